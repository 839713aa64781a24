package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/httpx"
	"github.com/go-chi/chi/v5"
)

// maxContentBody caps JSON bodies of the admin API.
const maxContentBody = 1 << 20

type reorderRequest struct {
	IDs []string `json:"ids"`
}

// mountContent registers the CRUD and reorder routes of one content type
// under /<kind>.
func mountContent[T any](r chi.Router, kind string, api ContentAPI[T], logger logging.Logger) {
	h := contentHandler[T]{api: api, logger: logger.With("kind", kind)}
	r.Route("/"+kind, func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Post("/reorder", h.reorder)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type contentHandler[T any] struct {
	api    ContentAPI[T]
	logger logging.Logger
}

func (h contentHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.api.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h contentHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.api.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h contentHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	item := new(T)
	if !decode(w, r, item) {
		return
	}
	created, err := h.api.Create(r.Context(), item)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h contentHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	item := new(T)
	if !decode(w, r, item) {
		return
	}
	updated, err := h.api.Update(r.Context(), chi.URLParam(r, "id"), item)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h contentHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.api.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h contentHandler[T]) reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.api.Reorder(r.Context(), req.IDs); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps a service error onto a status code and {error} body.
func (h contentHandler[T]) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		httpx.Error(w, http.StatusUnprocessableEntity, validationMessage(err))
	case errors.Is(err, common.ErrorNotFound):
		httpx.Error(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		httpx.Error(w, http.StatusConflict, "Already exists")
	default:
		h.logger.Error(r.Context(), "content request failed", "method", r.Method, "error", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
	if msg == "" {
		return "Invalid input"
	}
	return msg
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContentBody)).Decode(dst); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
