package dto

import (
	"time"

	"github.com/baechuer/docvault/internal/domain"
)

type DocumentView struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	FileName     string    `json:"file_name"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	FileSize     int64     `json:"file_size"`
	IsPublic     bool      `json:"is_public"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewDocumentView(d domain.Document) DocumentView {
	return DocumentView{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		Title:        d.Title,
		Description:  d.Description,
		FileName:     d.FileName,
		OriginalName: d.OriginalName,
		MimeType:     d.MimeType,
		FileSize:     d.FileSize,
		IsPublic:     d.IsPublic,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func NewDocumentViews(ds []domain.Document) []DocumentView {
	out := make([]DocumentView, len(ds))
	for i, d := range ds {
		out[i] = NewDocumentView(d)
	}
	return out
}
