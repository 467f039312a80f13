package api

import (
	"context"
	"net/http"
	"strconv"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, err := userID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req bookingCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeServiceError(w, r, validationError(err))
		return
	}

	booking, err := s.svc.Bookings.Create(r.Context(), bookerID, req.ItemID, req.Start.Time(), req.End.Time())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	requesterID, err := userID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	booking, err := s.svc.Bookings.GetByID(r.Context(), bookingID, requesterID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

// handleChangeBookingStatus serves PATCH /bookings/{id}?approved=true|false.
func (s *HTTPServer) handleChangeBookingStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, err := userID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeServiceError(w, r, domain.Validationf("query parameter approved must be true or false"))
		return
	}

	booking, err := s.svc.Bookings.ChangeStatus(r.Context(), bookingID, ownerID, approved)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (s *HTTPServer) handleListBookerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.svc.Bookings.ListByBooker)
}

func (s *HTTPServer) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.svc.Bookings.ListByOwner)
}

type bookingLister func(ctx context.Context, id int64, state models.BookingState) ([]*models.Booking, error)

// listBookings serves ?state= lists; an absent state means ALL.
func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
	id, err := userID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	bookings, err := list(r.Context(), id, models.BookingState(r.URL.Query().Get("state")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}
