package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shareit/internal/dto"
)

func (s *HTTPServer) registerRequests(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.Post("/", s.createRequest)
		r.Get("/", s.listOwnRequests)
		r.Get("/all", s.listOtherRequests)
		r.Get("/{id}", s.getRequest)
	})
}

func (s *HTTPServer) createRequest(w http.ResponseWriter, r *http.Request) {
	requester, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var body dto.NewRequest
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	details, err := s.services.Requests.Create(r.Context(), requester, body.Model())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRequestDto(*details))
}

func (s *HTTPServer) listOwnRequests(w http.ResponseWriter, r *http.Request) {
	requester, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	reqs, err := s.services.Requests.ListOwn(r.Context(), requester)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRequestDtos(reqs))
}

func (s *HTTPServer) listOtherRequests(w http.ResponseWriter, r *http.Request) {
	user, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	reqs, err := s.services.Requests.ListOthers(r.Context(), user, page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRequestDtos(reqs))
}

func (s *HTTPServer) getRequest(w http.ResponseWriter, r *http.Request) {
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

	details, err := s.services.Requests.Get(r.Context(), user, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRequestDto(*details))
}
