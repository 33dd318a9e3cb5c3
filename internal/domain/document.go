package domain

import "time"

// Document is the metadata record of an uploaded file. The file bytes live
// outside this service.
type Document struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	FileName     string
	OriginalName string
	MimeType     string
	FileSize     int64
	IsPublic     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DocumentFilter narrows document listings.
// Empty OwnerID with IncludePublic=false means "all documents" (admin view).
type DocumentFilter struct {
	OwnerID       string
	IncludePublic bool
	MimeType      string
	Search        string
}
