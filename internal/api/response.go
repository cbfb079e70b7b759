package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"shareit/internal/dto"
	"shareit/internal/models"
	"shareit/internal/service"
)

const maxBodyBytes = 1 << 20

// badRequest is a malformed request detected before reaching a service.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps err to a status code and writes the error body.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		br *badRequest
		ve *dto.ValidationError
	)
	switch {
	case errors.As(err, &br):
		writeError(w, http.StatusBadRequest, br.msg)
		return
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
		return
	}

	switch service.KindOf(err) {
	case service.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case service.KindInvalid:
		writeError(w, http.StatusBadRequest, err.Error())
	case service.KindConflict:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.logger.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the body into dst and validates it.
func (s *HTTPServer) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return invalidf("request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return invalidf("request body is too large")
		}
		return invalidf("malformed JSON: %v", err)
	}
	return s.validator.Struct(dst)
}

// callerID reads the acting user's id from the identity header.
func (s *HTTPServer) callerID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(s.cfg.UserHeader))
	if raw == "" {
		return 0, invalidf("%s header is required", s.cfg.UserHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidf("%s header must be a positive integer", s.cfg.UserHeader)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalidf("invalid %s %q", name, raw)
	}
	return id, nil
}

// pageParams parses from (offset, default 0) and size (optional, positive).
func pageParams(r *http.Request) (models.Page, error) {
	var page models.Page
	q := r.URL.Query()

	if raw := q.Get("from"); raw != "" {
		from, err := strconv.Atoi(raw)
		if err != nil {
			return page, invalidf("from must be an integer")
		}
		if from < 0 {
			return page, invalidf("from must not be negative")
		}
		page.From = from
	}

	if raw := q.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return page, invalidf("size must be an integer")
		}
		if size <= 0 {
			return page, invalidf("size must be positive")
		}
		page.Size = size
	}
	return page, nil
}

// stateParam parses the booking state filter; unknown values get the fixed message.
func stateParam(r *http.Request) (models.BookingState, error) {
	state, err := models.ParseBookingState(r.URL.Query().Get("state"))
	if err != nil {
		return "", invalidf("%s", models.UnsupportedStateMessage)
	}
	return state, nil
}
