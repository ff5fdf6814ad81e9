package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
	"taskroom/internal/repositories"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Project{}, &models.Column{}, &models.Task{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, store repositories.Store)) {
	t.Run("gorm", func(t *testing.T) {
		fn(t, repositories.NewGORMStore(openSQLite(t)))
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, repositories.NewMemoryStore())
	})
}

func TestUserRepository(t *testing.T) {
	forEachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		users := store.Users()

		user := &models.User{Username: "alice", Email: "alice@example.com", HashedPassword: "hash"}
		require.NoError(t, users.Create(ctx, user))
		assert.True(t, models.IsValidID(user.ID))

		found, err := users.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.NotNil(t, found.OwnedProjects)

		dup := &models.User{Username: "alice2", Email: "alice@example.com", HashedPassword: "hash"}
		err = users.Create(ctx, dup)
		assert.True(t, errors.Is(err, apperrors.ErrConflict), "got %v", err)

		found.OwnedProjects = models.AddID(found.OwnedProjects, models.NewID())
		found.EmailVerified = true
		require.NoError(t, users.Update(ctx, found))

		reloaded, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.EmailVerified)
		assert.Len(t, reloaded.OwnedProjects, 1)

		all, err := users.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		require.NoError(t, users.Delete(ctx, user.ID))
		_, err = users.GetByID(ctx, user.ID)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Contains(t, err.Error(), "not found")

		_, err = users.GetByEmail(ctx, "nobody@example.com")
		assert.True(t, apperrors.IsNotFound(err))
		assert.True(t, apperrors.IsNotFound(users.Delete(ctx, user.ID)))
	})
}

func TestProjectColumnTaskRepositories(t *testing.T) {
	forEachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()

		project := &models.Project{Name: "Board"}
		require.NoError(t, store.Projects().Create(ctx, project))

		first := &models.Column{ParentProject: project.ID, Name: "Todo"}
		second := &models.Column{ParentProject: project.ID, Name: "Done"}
		other := &models.Column{ParentProject: models.NewID(), Name: "Elsewhere"}
		for _, c := range []*models.Column{first, second, other} {
			require.NoError(t, store.Columns().Create(ctx, c))
		}

		columns, err := store.Columns().ListByProject(ctx, project.ID)
		require.NoError(t, err)
		assert.Len(t, columns, 2)

		byIDs, err := store.Columns().GetByIDs(ctx, []string{first.ID, other.ID})
		require.NoError(t, err)
		assert.Len(t, byIDs, 2)

		empty, err := store.Columns().GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		task := &models.Task{ParentColumn: first.ID, Title: "Write docs"}
		require.NoError(t, store.Tasks().Create(ctx, task))
		listed, err := store.Tasks().ListByColumn(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "Write docs", listed[0].Title)

		task.ParentColumn = second.ID
		require.NoError(t, store.Tasks().Update(ctx, task))
		moved, err := store.Tasks().GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, moved.ParentColumn)

		require.NoError(t, store.Tasks().DeleteMany(ctx, []string{task.ID, models.NewID()}))
		_, err = store.Tasks().GetByID(ctx, task.ID)
		assert.True(t, apperrors.IsNotFound(err))

		missing := &models.Column{ID: models.NewID(), ParentProject: project.ID, Name: "Ghost"}
		err = store.Columns().Update(ctx, missing)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Contains(t, err.Error(), missing.ID)

		projects, err := store.Projects().GetByIDs(ctx, []string{project.ID})
		require.NoError(t, err)
		assert.Len(t, projects, 1)
		require.NoError(t, store.Projects().Delete(ctx, project.ID))
		_, err = store.Projects().GetByID(ctx, project.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestAtomic_RollsBackOnError(t *testing.T) {
	forEachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		project := &models.Project{Name: "Board"}
		require.NoError(t, store.Projects().Create(ctx, project))

		boom := errors.New("boom")
		column := &models.Column{ParentProject: project.ID, Name: "Todo"}
		err := store.Atomic(ctx, func(tx repositories.Store) error {
			if err := tx.Columns().Create(ctx, column); err != nil {
				return err
			}
			project.Columns = models.AddID(project.Columns, column.ID)
			if err := tx.Projects().Update(ctx, project); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = store.Columns().GetByID(ctx, column.ID)
		assert.True(t, apperrors.IsNotFound(err))
		reloaded, err := store.Projects().GetByID(ctx, project.ID)
		require.NoError(t, err)
		assert.Empty(t, reloaded.Columns)
	})
}

func TestAtomic_CommitsOnSuccess(t *testing.T) {
	forEachStore(t, func(t *testing.T, store repositories.Store) {
		ctx := context.Background()
		project := &models.Project{Name: "Board"}
		err := store.Atomic(ctx, func(tx repositories.Store) error {
			return tx.Projects().Create(ctx, project)
		})
		require.NoError(t, err)

		_, err = store.Projects().GetByID(ctx, project.ID)
		assert.NoError(t, err)
	})
}

func TestGORMStore_TranslatesDriverFailures(t *testing.T) {
	db := openSQLite(t)
	boom := errors.New("disk full")
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_tasks", func(tx *gorm.DB) {
		if tx.Statement.Table == "tasks" {
			_ = tx.AddError(boom)
		}
	}))

	store := repositories.NewGORMStore(db)
	err := store.Tasks().Create(context.Background(), &models.Task{ParentColumn: models.NewID(), Title: "Nope"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, apperrors.KindUnknown, apperrors.KindOf(err))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	column := &models.Column{ParentProject: models.NewID(), Name: "Todo", Tasks: models.IDList{}}
	require.NoError(t, store.Columns().Create(ctx, column))

	column.Tasks = append(column.Tasks, models.NewID())
	loaded, err := store.Columns().GetByID(ctx, column.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Tasks)

	loaded.Tasks = append(loaded.Tasks, models.NewID())
	again, err := store.Columns().GetByID(ctx, column.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Tasks)
}

func TestMemoryStore_RollbackKeepsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	entered := make(chan struct{})
	release := make(chan struct{})
	boom := errors.New("boom")
	staged := &models.User{Username: "staged", Email: "staged@example.com", HashedPassword: "x"}

	txDone := make(chan error, 1)
	go func() {
		txDone <- store.Atomic(ctx, func(tx repositories.Store) error {
			if err := tx.Users().Create(ctx, staged); err != nil {
				return err
			}
			close(entered)
			<-release
			return boom
		})
	}()
	<-entered

	// Uncommitted writes are invisible outside the unit of work.
	_, err := store.Users().GetByID(ctx, staged.ID)
	assert.True(t, apperrors.IsNotFound(err))

	alice := &models.User{Username: "alice", Email: "alice@example.com", HashedPassword: "x"}
	createDone := make(chan error, 1)
	go func() { createDone <- store.Users().Create(ctx, alice) }()

	close(release)
	assert.ErrorIs(t, <-txDone, boom)
	require.NoError(t, <-createDone)

	loaded, err := store.Users().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Username)
	_, err = store.Users().GetByID(ctx, staged.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryStore_CommitKeepsEarlierWrites(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	alice := &models.User{Username: "alice", Email: "alice@example.com", HashedPassword: "x"}
	require.NoError(t, store.Users().Create(ctx, alice))

	project := &models.Project{Name: "Board"}
	require.NoError(t, store.Atomic(ctx, func(tx repositories.Store) error {
		if err := tx.Projects().Create(ctx, project); err != nil {
			return err
		}
		user, err := tx.Users().GetByID(ctx, alice.ID)
		if err != nil {
			return err
		}
		user.OwnedProjects = models.AddID(user.OwnedProjects, project.ID)
		return tx.Users().Update(ctx, user)
	}))

	loaded, err := store.Users().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IDList{project.ID}, loaded.OwnedProjects)
	_, err = store.Projects().GetByID(ctx, project.ID)
	assert.NoError(t, err)
}
