package services

import (
	"context"
	"fmt"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
	"taskroom/internal/repositories"
)

// userRefs selects one of a user's reference collections.
type userRefs func(u *models.User) *models.IDList

var (
	ownedProjects  userRefs = func(u *models.User) *models.IDList { return &u.OwnedProjects }
	joinedProjects userRefs = func(u *models.User) *models.IDList { return &u.JoinedProjects }
	ownedTasks     userRefs = func(u *models.User) *models.IDList { return &u.OwnedTasks }
	joinedTasks    userRefs = func(u *models.User) *models.IDList { return &u.JoinedTasks }
)

// pushUserRef adds id to one of userID's collections. The user must exist.
func pushUserRef(ctx context.Context, store repositories.Store, userID string, refs userRefs, id string) error {
	user, err := store.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	list := refs(user)
	if models.HasID(*list, id) {
		return nil
	}
	*list = models.AddID(*list, id)
	return store.Users().Update(ctx, user)
}

// pullUserRef removes id from one of userID's collections. Users are deleted
// without cascading, so a missing user is not an error.
func pullUserRef(ctx context.Context, store repositories.Store, userID string, refs userRefs, id string) error {
	if userID == "" {
		return nil
	}
	user, err := store.Users().GetByID(ctx, userID)
	if apperrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	list := refs(user)
	if !models.HasID(*list, id) {
		return nil
	}
	*list = models.RemoveID(*list, id)
	return store.Users().Update(ctx, user)
}

// moveUserRef moves id from oldUserID's collection to newUserID's.
func moveUserRef(ctx context.Context, store repositories.Store, oldUserID, newUserID string, refs userRefs, id string) error {
	if oldUserID == newUserID {
		return nil
	}
	if err := pullUserRef(ctx, store, oldUserID, refs, id); err != nil {
		return err
	}
	if newUserID == "" {
		return nil
	}
	return pushUserRef(ctx, store, newUserID, refs, id)
}

func pullColumnTask(ctx context.Context, store repositories.Store, columnID, taskID string) error {
	column, err := store.Columns().GetByID(ctx, columnID)
	if apperrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !models.HasID(column.Tasks, taskID) {
		return nil
	}
	column.Tasks = models.RemoveID(column.Tasks, taskID)
	return store.Columns().Update(ctx, column)
}

func detachTaskFromUsers(ctx context.Context, store repositories.Store, task *models.Task) error {
	if err := pullUserRef(ctx, store, task.CreatedBy, ownedTasks, task.ID); err != nil {
		return err
	}
	return pullUserRef(ctx, store, task.AssignedTo, joinedTasks, task.ID)
}

// cascadeDeleteColumn deletes column together with every task it holds or
// that names it as parent. The parent project is left to the caller.
func cascadeDeleteColumn(ctx context.Context, store repositories.Store, column *models.Column) error {
	children, err := store.Tasks().ListByColumn(ctx, column.ID)
	if err != nil {
		return err
	}
	listed, err := store.Tasks().GetByIDs(ctx, column.Tasks)
	if err != nil {
		return err
	}

	ids := models.IDList{}
	for _, task := range append(children, listed...) {
		if models.HasID(ids, task.ID) {
			continue
		}
		ids = append(ids, task.ID)
		if err := detachTaskFromUsers(ctx, store, &task); err != nil {
			return err
		}
	}
	if err := store.Tasks().DeleteMany(ctx, ids); err != nil {
		return fmt.Errorf("failed to delete tasks of column %s: %w", column.ID, err)
	}
	return store.Columns().Delete(ctx, column.ID)
}
