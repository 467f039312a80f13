package models

import "time"

type User struct {
	ID        int64     `yaml:"id" json:"id"`
	Email     string    `yaml:"email" json:"email"`
	Name      string    `yaml:"name" json:"name"`
	CreatedAt time.Time `yaml:"-" json:"created_at"`
	UpdatedAt time.Time `yaml:"-" json:"updated_at"`
}

// UserPatch carries the fields of a partial user update; nil leaves the value as is.
type UserPatch struct {
	Email *string
	Name  *string
}
