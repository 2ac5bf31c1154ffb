// Package api serves the JSON item endpoint at /api/items.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/icdts/itemboard/internal/store"
)

// Path is where the item endpoint is mounted.
const Path = "/api/items"

// Error messages returned to clients.
const (
	MsgNameRequired = "Name is required"
	MsgNotFound     = "Item not found"
	MsgBadRequest   = "Invalid request body"
	MsgInternal     = "Internal server error"
)

// Options tunes how the endpoint reports failures.
type Options struct {
	// StrictNotFound surfaces unknown ids and unreadable bodies on PUT and
	// DELETE. When false those requests are acknowledged with success.
	StrictNotFound bool
	MaxBodyBytes   int64
}

type Handler struct {
	store store.Store
	log   *slog.Logger
	opts  Options
}

func NewHandler(s store.Store, log *slog.Logger, opts Options) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Handler{store: s, log: log, opts: opts}
}

// Register mounts the four item routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+Path, h.list)
	mux.HandleFunc("POST "+Path, h.create)
	mux.HandleFunc("PUT "+Path, h.update)
	mux.HandleFunc("DELETE "+Path, h.delete)
}

type createRequest struct {
	Name string `json:"name"`
}

type updateRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type deleteRequest struct {
	ID int64 `json:"id"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		h.internalError(w, "list", err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := h.decode(w, r, &req); err != nil {
		h.log.Debug("unreadable create body", "error", err)
		WriteError(w, http.StatusBadRequest, MsgNameRequired)
		return
	}

	item, err := h.store.Create(r.Context(), req.Name)
	if err != nil {
		var vErr *store.ValidationError
		if errors.As(err, &vErr) {
			WriteError(w, vErr.StatusCode(), vErr.Message)
			return
		}
		h.internalError(w, "create", err)
		return
	}

	h.log.Info("item created", "input", item.ID)
	WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.badMutation(w, "update", err)
		return
	}

	h.finishMutation(w, "update", req.ID, h.store.Update(r.Context(), req.ID, req.Name))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := h.decode(w, r, &req); err != nil {
		h.badMutation(w, "delete", err)
		return
	}

	h.finishMutation(w, "delete", req.ID, h.store.Delete(r.Context(), req.ID))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	return json.NewDecoder(body).Decode(v)
}

func (h *Handler) badMutation(w http.ResponseWriter, op string, err error) {
	h.log.Warn("unreadable request body", "input", op, "error", err)
	if h.opts.StrictNotFound {
		WriteError(w, http.StatusBadRequest, MsgBadRequest)
		return
	}
	WriteSuccess(w)
}

func (h *Handler) finishMutation(w http.ResponseWriter, op string, id int64, err error) {
	switch {
	case err == nil:
		h.log.Info("item "+op+"d", "input", id)
		WriteSuccess(w)
	case errors.Is(err, store.ErrNotFound):
		h.log.Debug("no item to "+op, "input", id)
		if h.opts.StrictNotFound {
			WriteError(w, http.StatusNotFound, MsgNotFound)
			return
		}
		WriteSuccess(w)
	default:
		h.internalError(w, op, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.log.Error("item store failure", "input", op, "error", err)
	WriteError(w, http.StatusInternalServerError, MsgInternal)
}
