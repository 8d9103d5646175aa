package crud

import (
	"fmt"
	"net/http"

	"github.com/frahmantamala/karyawan-management/internal/transport"
	"github.com/go-chi/chi"
)

// Handler serves the five CRUD routes of one resource.
type Handler[M any, P any] struct {
	*transport.BaseHandler
	Service *Service[M, P]
}

func NewHandler[M any, P any](baseHandler *transport.BaseHandler, service *Service[M, P]) *Handler[M, P] {
	return &Handler[M, P]{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// Mount registers the routes on r, which is expected to be the resource prefix.
func (h *Handler[M, P]) Mount(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler[M, P]) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res := h.Service.Resource()
	out := make([]interface{}, 0, len(rows))
	for _, m := range rows {
		out = append(out, res.Present(m))
	}
	h.WriteSuccess(w, http.StatusOK, fmt.Sprintf("List of %s retrieved successfully", res.Plural()), out)
}

func (h *Handler[M, P]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	m, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res := h.Service.Resource()
	h.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%s with ID %d retrieved successfully", res.Name(), id), res.Present(m))
}

func (h *Handler[M, P]) Create(w http.ResponseWriter, r *http.Request) {
	payload := new(P)
	if err := h.DecodeJSON(r, payload); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	m, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res := h.Service.Resource()
	h.WriteSuccess(w, http.StatusCreated, fmt.Sprintf("%s created successfully", res.Name()), res.Present(m))
}

func (h *Handler[M, P]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	payload := new(P)
	if err := h.DecodeJSON(r, payload); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	m, err := h.Service.Update(r.Context(), id, payload)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res := h.Service.Resource()
	h.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%s with ID %d updated successfully", res.Name(), id), res.Present(m))
}

func (h *Handler[M, P]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%s with ID %d deleted successfully", h.Service.Resource().Name(), id), nil)
}
