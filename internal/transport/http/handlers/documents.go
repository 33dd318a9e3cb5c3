package http_handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/docvault/internal/application/documents"
	"github.com/baechuer/docvault/internal/domain"
	"github.com/baechuer/docvault/internal/transport/http/dto"
	"github.com/baechuer/docvault/internal/transport/http/middleware"
	"github.com/baechuer/docvault/internal/transport/http/response"
)

// DocumentHandler serves document metadata. Ownership checks live in the
// documents service because the owner is only known after loading.
type DocumentHandler struct {
	svc *documents.Service
}

func NewDocumentHandler(svc *documents.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func principal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
	}
	return p, ok
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req dto.CreateDocumentRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	d, err := h.svc.Create(r.Context(), p, documents.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		FileName:     req.FileName,
		OriginalName: req.OriginalName,
		MimeType:     req.MimeType,
		FileSize:     req.FileSize,
		IsPublic:     req.IsPublic,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.Created(w, dto.NewDocumentView(d))
}

// List handles GET /documents?search=...&mimeType=...
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	docs, err := h.svc.List(r.Context(), p, documents.ListQuery{
		Search:   q.Get("search"),
		MimeType: q.Get("mimeType"),
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.List(w, dto.NewDocumentViews(docs), len(docs))
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	d, err := h.svc.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewDocumentView(d))
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req dto.UpdateDocumentRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	d, err := h.svc.Update(r.Context(), p, chi.URLParam(r, "id"), documents.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewDocumentView(d))
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}
