package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"shareit/internal/export"
	"shareit/internal/models"
)

// handleExportOwnerBookings serves the owner's bookings as an XLSX attachment.
func (s *HTTPServer) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, err := userID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	bookings, err := s.svc.Bookings.ListByOwner(r.Context(), ownerID, models.BookingState(r.URL.Query().Get("state")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookingsXLSX(&buf, bookings); err != nil {
		writeServiceError(w, r, fmt.Errorf("export bookings: %w", err))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings_owner_%d.xlsx"`, ownerID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
