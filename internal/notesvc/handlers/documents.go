package handlers

import (
	"net/http"

	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/service"
)

type documentRequest struct {
	Title    string `json:"title"`
	GridRows int    `json:"grid_rows"`
	GridCols int    `json:"grid_cols"`
}

type documentPatchRequest struct {
	Title    *string `json:"title"`
	GridRows *int    `json:"grid_rows"`
	GridCols *int    `json:"grid_cols"`
}

type placementRequest struct {
	CardID   int64 `json:"card_id"`
	Row      int   `json:"row"`
	Col      int   `json:"col"`
	SpanRows int   `json:"span_rows"`
	SpanCols int   `json:"span_cols"`
	Position int   `json:"position"`
}

type placementResponse struct {
	DocumentCardID int64 `json:"document_card_id"`
}

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.documents.CreateDocument(r.Context(), currentUser(r), service.DocumentInput{
		Title:    req.Title,
		GridRows: req.GridRows,
		GridCols: req.GridCols,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "document created", d)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, http.StatusNotFound, "Not found")
		return
	}

	d, err := h.documents.GetDocument(r.Context(), currentUser(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "document", d)
}

func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, http.StatusNotFound, "Not found")
		return
	}
	var req documentPatchRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.documents.UpdateDocument(r.Context(), currentUser(r), id, service.DocumentPatch{
		Title:    req.Title,
		GridRows: req.GridRows,
		GridCols: req.GridCols,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "document updated", d)
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, http.StatusNotFound, "Not found")
		return
	}

	if err := h.documents.DeleteDocument(r.Context(), currentUser(r), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := page(r)
	if !ok {
		h.fail(w, http.StatusBadRequest, "invalid limit or offset")
		return
	}

	docs, err := h.documents.ListDocuments(r.Context(), currentUser(r), models.DocumentFilter{
		Tag:    r.URL.Query().Get("tag"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "documents", docs)
}

func (h *Handler) AddDocumentCard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, http.StatusNotFound, "Not found")
		return
	}
	var req placementRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dc, err := h.documents.AddCard(r.Context(), currentUser(r), id, service.Placement{
		CardID:   req.CardID,
		Row:      req.Row,
		Col:      req.Col,
		SpanRows: req.SpanRows,
		SpanCols: req.SpanCols,
		Position: req.Position,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "card added", placementResponse{DocumentCardID: dc.ID})
}

func (h *Handler) ListDocumentCards(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, http.StatusNotFound, "Not found")
		return
	}

	placements, err := h.documents.ListCards(r.Context(), currentUser(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "document cards", placements)
}
