package domain

import (
	"context"
	"fmt"

	"trackiq/internal/core/apperror"
	appctx "trackiq/internal/core/context"
	"trackiq/internal/core/id"
	"trackiq/internal/core/tx"
	"trackiq/pkg/logger"
)

// CatalogService provides the create/read/update/delete flow shared by catalog entities.
// Entity-specific rules attach through Hooks.
type CatalogService[T Entity] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]

	// entityName for error messages
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T Entity] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	EntityName string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T Entity](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	txm := cfg.TxManager
	if txm == nil {
		txm = tx.Nop{}
	}
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  txm,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// EntityName is the display name used in errors and audit rows.
func (s *CatalogService[T]) EntityName() string {
	return s.entityName
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *CatalogService[T]) normalizeGetErr(err error, idOrCode any) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, idOrCode)
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", idOrCode)
}

// Create validates and stores a new entity.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) error {
	stampCreated(ctx, entity)

	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterCreate, entity)
	return nil
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return entity, s.normalizeGetErr(err, entityID.String())
	}
	return entity, nil
}

// GetByCode retrieves entity by code.
func (s *CatalogService[T]) GetByCode(ctx context.Context, code string) (T, error) {
	entity, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return entity, s.normalizeGetErr(err, code)
	}
	return entity, nil
}

// Update validates and stores a modified entity.
func (s *CatalogService[T]) Update(ctx context.Context, entity T) error {
	stampUpdated(ctx, entity)

	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, BeforeUpdate, entity); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, entity); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterUpdate, entity)
	return nil
}

// Delete performs soft delete.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, BeforeDelete, entity); err != nil {
			return err
		}
		if err := s.repo.SetDeletionMark(ctx, entityID, true); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterDelete, entity)
	return nil
}

// List retrieves entities with filtering.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	filter.Normalize(DefaultPageSize, MaxPageSize)
	return s.repo.List(ctx, filter)
}

// Exists checks if entity exists.
func (s *CatalogService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}

// after-hooks run once the row is committed; a failure is logged, not returned.
func (s *CatalogService[T]) runAfter(ctx context.Context, event HookEvent, entity T) {
	if err := s.hooks.Run(ctx, event, entity); err != nil {
		logger.Warn(ctx, "after hook failed",
			"entity", s.entityName,
			"event", string(event),
			"id", entity.GetID().String(),
			"error", err,
		)
	}
}

type creatorStamped interface {
	SetCreatedBy(id.ID)
}

type updaterStamped interface {
	SetUpdatedBy(id.ID)
	Touch()
}

func stampCreated(ctx context.Context, entity any) {
	uid, ok := CurrentUserID(ctx)
	if !ok {
		return
	}
	if e, ok := entity.(creatorStamped); ok {
		e.SetCreatedBy(uid)
	}
}

func stampUpdated(ctx context.Context, entity any) {
	e, ok := entity.(updaterStamped)
	if !ok {
		return
	}
	e.Touch()
	if uid, ok := CurrentUserID(ctx); ok {
		e.SetUpdatedBy(uid)
	}
}

// CurrentUserID returns the authenticated caller's id, if any.
func CurrentUserID(ctx context.Context) (id.ID, bool) {
	raw := appctx.GetUserID(ctx)
	if raw == "" {
		return id.ID{}, false
	}
	uid, err := id.Parse(raw)
	if err != nil {
		return id.ID{}, false
	}
	return uid, true
}
