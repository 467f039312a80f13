package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", NotFoundf("booking %d", 1), ErrNotFound},
		{"validation", Validationf("bad state %q", "X"), ErrValidation},
		{"conflict", Conflictf("email taken"), ErrConflict},
		{"wrapped twice", fmt.Errorf("outer: %w", NotFoundf("user")), ErrNotFound},
		{"unclassified", errors.New("boom"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestHelpersKeepMessage(t *testing.T) {
	err := Validationf("status already decided")
	assert.Equal(t, "validation failed: status already decided", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "status already decided", Message(err))
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", Validationf("Unknown state: %s", "SOMETIMES"), "Unknown state: SOMETIMES"},
		{"not found", NotFoundf("item %d not found", 7), "item 7 not found"},
		{"wrapped", fmt.Errorf("create booking: %w", Conflictf("email taken")), "email taken"},
		{"unclassified", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}
