package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"taskroom/internal/apperrors"
)

// GORMStore is a Store backed by a gorm database; Atomic maps to a transaction.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new instance of GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

func (s *GORMStore) Users() UserRepository       { return NewGORMUserRepository(s.db) }
func (s *GORMStore) Projects() ProjectRepository { return NewGORMProjectRepository(s.db) }
func (s *GORMStore) Columns() ColumnRepository   { return NewGORMColumnRepository(s.db) }
func (s *GORMStore) Tasks() TaskRepository       { return NewGORMTaskRepository(s.db) }

// Atomic runs fn inside a database transaction.
func (s *GORMStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}

// translateError maps gorm sentinel errors onto application error kinds.
func translateError(err error, notFound *apperrors.Error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrap(apperrors.KindConflict, err, "duplicate key")
	default:
		return err
	}
}

// checkAffected turns a write that touched no row into notFound.
func checkAffected(res *gorm.DB, notFound *apperrors.Error) error {
	if res.Error != nil {
		return translateError(res.Error, notFound)
	}
	if res.RowsAffected == 0 {
		return notFound
	}
	return nil
}
