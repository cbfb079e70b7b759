package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"shareit/internal/dto"
	"shareit/internal/export"
	"shareit/internal/models"
)

func (s *HTTPServer) registerBookings(r chi.Router) {
	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", s.createBooking)
		r.Get("/", s.listBookerBookings)
		r.Get("/owner", s.listOwnerBookings)
		r.Get("/owner/export", s.exportOwnerBookings)
		r.Get("/{id}", s.getBooking)
		r.Patch("/{id}", s.approveBooking)
		r.Patch("/{id}/cancel", s.cancelBooking)
	})
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	booker, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var body dto.NewBooking
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	booking := body.Model()
	if err := s.services.Bookings.Create(r.Context(), booker, booking); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBookingDto(*booking))
}

func (s *HTTPServer) approveBooking(w http.ResponseWriter, r *http.Request) {
	owner, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		s.writeServiceError(w, r, invalidf("approved must be true or false"))
		return
	}

	booking, err := s.services.Bookings.Approve(r.Context(), owner, id, approved)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBookingDto(*booking))
}

func (s *HTTPServer) cancelBooking(w http.ResponseWriter, r *http.Request) {
	booker, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	booking, err := s.services.Bookings.Cancel(r.Context(), booker, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBookingDto(*booking))
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request) {
	user, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	booking, err := s.services.Bookings.Get(r.Context(), user, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBookingDto(*booking))
}

func (s *HTTPServer) listBookerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.services.Bookings.ListForBooker)
}

func (s *HTTPServer) listOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.services.Bookings.ListForOwner)
}

type bookingLister func(ctx context.Context, userID int64, state models.BookingState, page models.Page) ([]models.Booking, error)

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
	user, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	state, err := stateParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	bookings, err := list(r.Context(), user, state, page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBookingDtos(bookings))
}

// exportOwnerBookings streams the owner's bookings as an xlsx workbook.
func (s *HTTPServer) exportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	owner, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	state, err := stateParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	bookings, err := s.services.Bookings.ListForOwner(r.Context(), owner, state, models.Page{})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, bookings); err != nil {
		s.writeServiceError(w, r, fmt.Errorf("export bookings: %w", err))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, export.FileName(owner, time.Now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
