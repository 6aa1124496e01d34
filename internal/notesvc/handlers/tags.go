package handlers

import (
	"net/http"
)

type tagRequest struct {
	Name          string `json:"name"`
	IsAIGenerated bool   `json:"is_ai_generated"`
}

type assignRequest struct {
	CardID int64    `json:"card_id"`
	Tags   []string `json:"tags"`
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tags.CreateTag(r.Context(), req.Name, req.IsAIGenerated)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "tag", t)
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := page(r)
	if !ok {
		h.fail(w, http.StatusBadRequest, "invalid limit or offset")
		return
	}

	tags, err := h.tags.ListTags(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "tags", tags)
}

func (h *Handler) AssignTags(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.tags.AssignTags(r.Context(), currentUser(r), req.CardID, req.Tags)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "tags assigned", res)
}

func (h *Handler) ListCardVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, http.StatusNotFound, "Not found")
		return
	}

	versions, err := h.cards.ListVersions(r.Context(), currentUser(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "card versions", versions)
}

func (h *Handler) ListCardTags(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, http.StatusNotFound, "Not found")
		return
	}

	tags, err := h.tags.CardTags(r.Context(), currentUser(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "card tags", tags)
}
