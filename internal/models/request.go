package models

import "time"

type ItemRequest struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequestorID int64     `json:"requestor_id"`
	Created     time.Time `json:"created"`
}

// ItemRequestView is a request together with the items offered in response to it.
type ItemRequestView struct {
	ItemRequest
	Items []*Item
}
