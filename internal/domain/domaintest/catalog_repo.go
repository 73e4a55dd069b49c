// Package domaintest provides in-memory repositories for service tests.
package domaintest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain"
)

// Stored is what CatalogRepo needs from an entity.
type Stored interface {
	domain.Entity
	GetVersion() int
	SetVersion(int)
	GetCode() string
	IsDeleted() bool
	MarkDeleted()
}

type brandScoped interface {
	GetBrandID() id.ID
}

// CatalogRepo is an in-memory domain.CatalogRepository. Entities are copied on
// the way in and out so optimistic locking behaves like the database.
type CatalogRepo[E any, P interface {
	*E
	Stored
}] struct {
	mu    sync.Mutex
	items map[id.ID]E
	order []id.ID

	// UniqueCode rejects a second live entity with the same code
	UniqueCode bool
}

// NewCatalogRepo creates an empty repository.
func NewCatalogRepo[E any, P interface {
	*E
	Stored
}]() *CatalogRepo[E, P] {
	return &CatalogRepo[E, P]{items: make(map[id.ID]E), UniqueCode: true}
}

func (r *CatalogRepo[E, P]) Create(_ context.Context, e P) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UniqueCode {
		for _, existing := range r.items {
			p := P(&existing)
			if !p.IsDeleted() && p.GetCode() == e.GetCode() {
				return apperror.NewDuplicate("entity", "code", e.GetCode())
			}
		}
	}
	r.items[e.GetID()] = *e
	r.order = append(r.order, e.GetID())
	return nil
}

func (r *CatalogRepo[E, P]) GetByID(_ context.Context, entityID id.ID) (P, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[entityID]
	if !ok {
		return nil, apperror.NewNotFound("entity", entityID.String())
	}
	return P(&e), nil
}

func (r *CatalogRepo[E, P]) GetByCode(_ context.Context, code string) (P, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		p := P(&e)
		if !p.IsDeleted() && p.GetCode() == code {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("entity", code)
}

func (r *CatalogRepo[E, P]) Update(_ context.Context, e P) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[e.GetID()]
	if !ok {
		return apperror.NewNotFound("entity", e.GetID().String())
	}
	if P(&stored).GetVersion() != e.GetVersion() {
		return apperror.NewConcurrentModification("entity", e.GetID().String())
	}
	e.SetVersion(e.GetVersion() + 1)
	r.items[e.GetID()] = *e
	return nil
}

func (r *CatalogRepo[E, P]) SetDeletionMark(_ context.Context, entityID id.ID, marked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[entityID]
	if !ok {
		return apperror.NewNotFound("entity", entityID.String())
	}
	if marked {
		P(&stored).MarkDeleted()
	}
	r.items[entityID] = stored
	return nil
}

func (r *CatalogRepo[E, P]) List(_ context.Context, filter domain.ListFilter) (domain.ListResult[P], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []P
	for _, entityID := range r.order {
		e := r.items[entityID]
		p := P(&e)
		if p.IsDeleted() && !filter.IncludeDeleted {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.GetCode()), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.BrandID != nil {
			if bs, ok := any(p).(brandScoped); ok && bs.GetBrandID() != *filter.BrandID {
				continue
			}
		}
		all = append(all, p)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].GetCode() < all[j].GetCode() })

	res := domain.ListResult[P]{TotalCount: int64(len(all)), Limit: filter.Limit, Offset: filter.Offset}
	start := min(filter.Offset, len(all))
	end := len(all)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(all))
	}
	res.Items = all[start:end]
	return res, nil
}

func (r *CatalogRepo[E, P]) Exists(_ context.Context, entityID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[entityID]
	return ok, nil
}

// All returns every stored entity, deleted ones included.
func (r *CatalogRepo[E, P]) All() []P {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]P, 0, len(r.order))
	for _, entityID := range r.order {
		e := r.items[entityID]
		out = append(out, P(&e))
	}
	return out
}
