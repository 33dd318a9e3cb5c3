package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/baechuer/docvault/internal/domain"
)

type DocumentRepo struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

func NewDocumentRepo() *DocumentRepo {
	return &DocumentRepo{docs: make(map[string]domain.Document)}
}

func (r *DocumentRepo) Create(ctx context.Context, d domain.Document) (domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		return domain.Document{}, domain.ErrInternal(nil)
	}
	r.docs[d.ID] = d
	return d, nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.docs[id]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound()
	}
	return d, nil
}

func (r *DocumentRepo) List(ctx context.Context, f domain.DocumentFilter) ([]domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(f.Search)
	out := make([]domain.Document, 0)
	for _, d := range r.docs {
		if f.OwnerID != "" && d.OwnerID != f.OwnerID && !(f.IncludePublic && d.IsPublic) {
			continue
		}
		if f.MimeType != "" && d.MimeType != f.MimeType {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(d.Title), search) &&
			!strings.Contains(strings.ToLower(d.Description), search) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *DocumentRepo) Update(ctx context.Context, d domain.Document) (domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.docs[d.ID]
	if !ok {
		return domain.Document{}, domain.ErrDocumentNotFound()
	}
	d.OwnerID = prev.OwnerID
	d.CreatedAt = prev.CreatedAt
	r.docs[d.ID] = d
	return d, nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return domain.ErrDocumentNotFound()
	}
	delete(r.docs, id)
	return nil
}
