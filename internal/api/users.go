package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shareit/internal/dto"
)

func (s *HTTPServer) registerUsers(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", s.createUser)
		r.Get("/", s.listUsers)
		r.Get("/{id}", s.getUser)
		r.Patch("/{id}", s.updateUser)
		r.Delete("/{id}", s.deleteUser)
	})
}

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) {
	var body dto.NewUser
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user := body.Model()
	if err := s.services.Users.Create(r.Context(), user); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserDto(*user))
}

func (s *HTTPServer) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var body dto.UpdateUser
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user, err := s.services.Users.Update(r.Context(), id, body.Patch())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserDto(*user))
}

func (s *HTTPServer) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	user, err := s.services.Users.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserDto(*user))
}

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.services.Users.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserDtos(users))
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.services.Users.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
