package api

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
)

// Timestamp is a wall-clock time in the local zone encoded as models.TimeLayout.
type Timestamp time.Time

func (t Timestamp) Time() time.Time { return time.Time(t) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).In(time.Local).Format(models.TimeLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	parsed, err := time.ParseInLocation(models.TimeLayout, raw, time.Local)
	if err != nil {
		return fmt.Errorf("timestamp %q must look like %s", raw, models.TimeLayout)
	}
	*t = Timestamp(parsed)
	return nil
}

func ts(t time.Time) Timestamp { return Timestamp(t) }

type bookingCreateRequest struct {
	ItemID int64      `json:"itemId" validate:"required,gt=0"`
	Start  *Timestamp `json:"start" validate:"required"`
	End    *Timestamp `json:"end" validate:"required"`
}

type itemCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

type itemPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type userCreateRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

type userPatchRequest struct {
	Email *string `json:"email" validate:"omitempty,email"`
	Name  *string `json:"name"`
}

type commentCreateRequest struct {
	Text string `json:"text" validate:"required"`
}

type itemRequestCreateRequest struct {
	Description string `json:"description" validate:"required"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type itemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type bookingResponse struct {
	ID     int64        `json:"id"`
	Start  Timestamp    `json:"start"`
	End    Timestamp    `json:"end"`
	Status string       `json:"status"`
	ItemID int64        `json:"itemId"`
	Item   itemRef      `json:"item"`
	Booker userResponse `json:"booker"`
}

type bookingShortResponse struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    Timestamp `json:"start"`
	End      Timestamp `json:"end"`
}

type commentResponse struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    Timestamp `json:"created"`
}

type itemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"ownerId"`
	RequestID   *int64 `json:"requestId,omitempty"`
}

type itemViewResponse struct {
	itemResponse
	LastBooking *bookingShortResponse `json:"lastBooking"`
	NextBooking *bookingShortResponse `json:"nextBooking"`
	Comments    []commentResponse     `json:"comments"`
}

type itemRequestResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequestorID int64     `json:"requestorId"`
	Created     Timestamp `json:"created"`
}

type itemRequestViewResponse struct {
	itemRequestResponse
	Items []itemResponse `json:"items"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toBookingResponse(b *models.Booking) bookingResponse {
	return bookingResponse{
		ID:     b.ID,
		Start:  ts(b.Start),
		End:    ts(b.End),
		Status: string(b.Status),
		ItemID: b.ItemID,
		Item:   itemRef{ID: b.ItemID, Name: b.ItemName},
		Booker: userResponse{ID: b.BookerID, Email: b.BookerEmail, Name: b.BookerName},
	}
}

func toBookingResponses(bookings []*models.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}

func toBookingShort(b *models.Booking) *bookingShortResponse {
	if b == nil {
		return nil
	}
	return &bookingShortResponse{ID: b.ID, BookerID: b.BookerID, Start: ts(b.Start), End: ts(b.End)}
}

func toCommentResponse(c *models.Comment) commentResponse {
	return commentResponse{ID: c.ID, Text: c.Text, AuthorName: c.AuthorName, Created: ts(c.Created)}
}

func toItemResponse(i *models.Item) itemResponse {
	return itemResponse{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		OwnerID:     i.OwnerID,
		RequestID:   i.RequestID,
	}
}

func toItemResponses(items []*models.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, toItemResponse(i))
	}
	return out
}

func toItemViewResponse(v *models.ItemView) itemViewResponse {
	comments := make([]commentResponse, 0, len(v.Comments))
	for _, c := range v.Comments {
		comments = append(comments, toCommentResponse(c))
	}
	return itemViewResponse{
		itemResponse: toItemResponse(&v.Item),
		LastBooking:  toBookingShort(v.LastBooking),
		NextBooking:  toBookingShort(v.NextBooking),
		Comments:     comments,
	}
}

func toItemRequestResponse(r *models.ItemRequest) itemRequestResponse {
	return itemRequestResponse{ID: r.ID, Description: r.Description, RequestorID: r.RequestorID, Created: ts(r.Created)}
}

func toItemRequestResponses(requests []*models.ItemRequest) []itemRequestResponse {
	out := make([]itemRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, toItemRequestResponse(r))
	}
	return out
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Validationf("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return domain.Validationf("%s", strings.Join(msgs, "; "))
}
