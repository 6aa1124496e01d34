package handlers

import (
	"net/http"

	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/service"
)

type cardRequest struct {
	Title        *string `json:"title"`
	ContentMD    string  `json:"content_md"`
	TemplateType string  `json:"template_type"`
}

type cardPatchRequest struct {
	Title        *string `json:"title"`
	ContentMD    *string `json:"content_md"`
	TemplateType *string `json:"template_type"`
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.cards.CreateCard(r.Context(), currentUser(r), service.CardInput{
		Title:        req.Title,
		ContentMD:    req.ContentMD,
		TemplateType: req.TemplateType,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "card created", c)
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, http.StatusNotFound, "Not found")
		return
	}

	c, err := h.cards.GetCard(r.Context(), currentUser(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "card", c)
}

func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, http.StatusNotFound, "Not found")
		return
	}
	var req cardPatchRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.cards.UpdateCard(r.Context(), currentUser(r), id, service.CardPatch{
		Title:        req.Title,
		ContentMD:    req.ContentMD,
		TemplateType: req.TemplateType,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "card updated", c)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, http.StatusNotFound, "Not found")
		return
	}

	if err := h.cards.DeleteCard(r.Context(), currentUser(r), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := page(r)
	if !ok {
		h.fail(w, http.StatusBadRequest, "invalid limit or offset")
		return
	}
	q := r.URL.Query()

	cards, err := h.cards.ListCards(r.Context(), currentUser(r), models.CardFilter{
		TemplateType: q.Get("template_type"),
		Tag:          q.Get("tag"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "cards", cards)
}
