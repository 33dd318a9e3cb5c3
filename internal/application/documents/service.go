package documents

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/docvault/internal/application/access"
	"github.com/baechuer/docvault/internal/domain"
)

// MaxFileSize is the largest file a document record may describe.
const MaxFileSize int64 = 10 << 20

var allowedMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"text/plain",
	"image/jpeg",
	"image/png",
	"image/gif",
}

type Service struct {
	repo  Repo
	now   func() time.Time
	audit func(ctx context.Context, action string, fields map[string]string)
}

func NewService(repo Repo) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		audit: func(context.Context, string, map[string]string) {},
	}
}

func (s *Service) WithAudit(fn func(ctx context.Context, action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

type CreateInput struct {
	Title        string
	Description  string
	FileName     string
	OriginalName string
	MimeType     string
	FileSize     int64
	IsPublic     bool
}

type UpdateInput struct {
	Title       *string
	Description *string
	IsPublic    *bool
}

// Create records a document owned by p.
func (s *Service) Create(ctx context.Context, p domain.Principal, in CreateInput) (domain.Document, error) {
	if err := access.RequireAuthenticated()(p); err != nil {
		return domain.Document{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Document{}, domain.ErrMissingField("title")
	}
	if strings.TrimSpace(in.FileName) == "" {
		return domain.Document{}, domain.ErrMissingField("file_name")
	}
	mime := strings.ToLower(strings.TrimSpace(in.MimeType))
	if !slices.Contains(allowedMimeTypes, mime) {
		return domain.Document{}, domain.ErrInvalidField("mime_type", "unsupported")
	}
	if in.FileSize < 0 || in.FileSize > MaxFileSize {
		return domain.Document{}, domain.ErrInvalidField("file_size", "out_of_range")
	}

	now := s.now().UTC()
	d := domain.Document{
		ID:           uuid.NewString(),
		OwnerID:      p.ID,
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		FileName:     in.FileName,
		OriginalName: in.OriginalName,
		MimeType:     mime,
		FileSize:     in.FileSize,
		IsPublic:     in.IsPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.repo.Create(ctx, d)
	if err != nil {
		return domain.Document{}, err
	}
	s.audit(ctx, "document.create", map[string]string{"actor_id": p.ID, "document_id": created.ID, "result": "success"})
	return created, nil
}

// Get returns a document to its owner, to an admin, or to anyone when public.
func (s *Service) Get(ctx context.Context, p domain.Principal, id string) (domain.Document, error) {
	if err := access.RequireAuthenticated()(p); err != nil {
		return domain.Document{}, err
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	if d.IsPublic {
		return d, nil
	}
	if err := access.Evaluate(p, access.Requirement{Resource: &access.Resource{OwnerID: d.OwnerID}}); err != nil {
		return domain.Document{}, err
	}
	return d, nil
}

type ListQuery struct {
	Search   string
	MimeType string
}

// List returns everything to admins; others see their own and public documents.
func (s *Service) List(ctx context.Context, p domain.Principal, q ListQuery) ([]domain.Document, error) {
	if err := access.RequireAuthenticated()(p); err != nil {
		return nil, err
	}
	f := domain.DocumentFilter{
		Search:   strings.TrimSpace(q.Search),
		MimeType: strings.ToLower(strings.TrimSpace(q.MimeType)),
	}
	if !p.IsAdmin {
		f.OwnerID = p.ID
		f.IncludePublic = true
	}
	return s.repo.List(ctx, f)
}

// Update changes metadata; owner or admin only.
func (s *Service) Update(ctx context.Context, p domain.Principal, id string, in UpdateInput) (domain.Document, error) {
	d, err := s.loadForWrite(ctx, p, id)
	if err != nil {
		return domain.Document{}, err
	}

	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return domain.Document{}, domain.ErrInvalidField("title", "empty")
		}
		d.Title = t
	}
	if in.Description != nil {
		d.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsPublic != nil {
		d.IsPublic = *in.IsPublic
	}
	d.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, d)
	if err != nil {
		return domain.Document{}, err
	}
	s.audit(ctx, "document.update", map[string]string{"actor_id": p.ID, "document_id": id, "result": "success"})
	return updated, nil
}

// Delete removes the record; owner or admin only.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id string) error {
	if _, err := s.loadForWrite(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "document.delete", map[string]string{"actor_id": p.ID, "document_id": id, "result": "success"})
	return nil
}

func (s *Service) loadForWrite(ctx context.Context, p domain.Principal, id string) (domain.Document, error) {
	if err := access.RequireAuthenticated()(p); err != nil {
		return domain.Document{}, err
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	if err := access.Evaluate(p, access.Requirement{Resource: &access.Resource{OwnerID: d.OwnerID}}); err != nil {
		return domain.Document{}, err
	}
	return d, nil
}
