package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shareit/internal/dto"
)

func (s *HTTPServer) registerItems(r chi.Router) {
	r.Route("/items", func(r chi.Router) {
		r.Post("/", s.createItem)
		r.Get("/", s.listOwnItems)
		r.Get("/search", s.searchItems)
		r.Get("/{id}", s.getItem)
		r.Patch("/{id}", s.updateItem)
		r.Delete("/{id}", s.deleteItem)
		r.Post("/{id}/comment", s.addComment)
	})
}

func (s *HTTPServer) createItem(w http.ResponseWriter, r *http.Request) {
	owner, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var body dto.NewItem
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	item := body.Model()
	if err := s.services.Items.Create(r.Context(), owner, item); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemDto(*item))
}

func (s *HTTPServer) updateItem(w http.ResponseWriter, r *http.Request) {
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
	var body dto.UpdateItem
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	item, err := s.services.Items.Update(r.Context(), owner, id, body.Patch())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemDto(*item))
}

func (s *HTTPServer) getItem(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	details, err := s.services.Items.Get(r.Context(), viewer, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemDetailsDto(*details))
}

func (s *HTTPServer) listOwnItems(w http.ResponseWriter, r *http.Request) {
	owner, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	items, err := s.services.Items.ListByOwner(r.Context(), owner, page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemDetailsDtos(items))
}

func (s *HTTPServer) searchItems(w http.ResponseWriter, r *http.Request) {
	page, err := pageParams(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	items, err := s.services.Items.Search(r.Context(), r.URL.Query().Get("text"), page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToItemDtos(items))
}

func (s *HTTPServer) deleteItem(w http.ResponseWriter, r *http.Request) {
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
	if err := s.services.Items.Delete(r.Context(), owner, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) addComment(w http.ResponseWriter, r *http.Request) {
	author, err := s.callerID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var body dto.NewComment
	if err := s.decodeJSON(w, r, &body); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	comment, err := s.services.Items.AddComment(r.Context(), author, id, body.Text)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToCommentDto(*comment))
}
