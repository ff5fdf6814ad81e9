package repositories

import (
	"context"
	"sort"
	"sync"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
)

type memoryState struct {
	users    map[string]models.User
	projects map[string]models.Project
	columns  map[string]models.Column
	tasks    map[string]models.Task
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:    make(map[string]models.User),
		projects: make(map[string]models.Project),
		columns:  make(map[string]models.Column),
		tasks:    make(map[string]models.Task),
	}
}

func (st *memoryState) clone() *memoryState {
	out := newMemoryState()
	for id, u := range st.users {
		out.users[id] = u.Clone()
	}
	for id, p := range st.projects {
		out.projects[id] = p.Clone()
	}
	for id, c := range st.columns {
		out.columns[id] = c.Clone()
	}
	for id, t := range st.tasks {
		out.tasks[id] = t
	}
	return out
}

// MemoryStore is an in-memory implementation of Store. Atomic runs fn
// against a staged copy of the state and publishes it only when fn succeeds.
type MemoryStore struct {
	mu sync.RWMutex
	// txMu serialises units of work with direct writes to the committed state.
	txMu  sync.Mutex
	state *memoryState
	// staged is set on the copy handed to Atomic's fn; it is private to that
	// unit of work and already covered by the parent's txMu.
	staged bool
}

// NewMemoryStore creates a new, empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

func (s *MemoryStore) Users() UserRepository       { return &memoryUserRepository{s: s} }
func (s *MemoryStore) Projects() ProjectRepository { return &memoryProjectRepository{s: s} }
func (s *MemoryStore) Columns() ColumnRepository   { return &memoryColumnRepository{s: s} }
func (s *MemoryStore) Tasks() TaskRepository       { return &memoryTaskRepository{s: s} }

// Atomic runs fn on a staged copy of the state. Readers keep seeing the
// committed state until fn returns nil and the copy replaces it.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	staging := &MemoryStore{state: s.state.clone(), staged: true}
	s.mu.RUnlock()

	if err := fn(staging); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = staging.state
	s.mu.Unlock()
	return nil
}

// lockWrite takes the locks a write needs and returns the matching unlock.
func (s *MemoryStore) lockWrite() func() {
	if !s.staged {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.staged {
			s.txMu.Unlock()
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// memoryUserRepository implements UserRepository on a MemoryStore.
type memoryUserRepository struct {
	s *MemoryStore
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	defer r.s.lockWrite()()

	if user.ID == "" {
		user.ID = models.NewID()
	}
	for _, existing := range r.s.state.users {
		if existing.Email == user.Email {
			return apperrors.Conflict("duplicate key: email %s", user.Email)
		}
	}
	r.s.state.users[user.ID] = user.Clone()
	return nil
}

func (r *memoryUserRepository) GetAll(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]models.User, 0, len(r.s.state.users))
	for _, id := range sortedKeys(r.s.state.users) {
		users = append(users, r.s.state.users[id].Clone())
	}
	return users, nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.state.users[id]
	if !ok {
		return nil, userNotFound(id)
	}
	user = user.Clone()
	return &user, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.state.users {
		if user.Email == email {
			user = user.Clone()
			return &user, nil
		}
	}
	return nil, apperrors.NotFound("User with email %s not found", email)
}

func (r *memoryUserRepository) Update(_ context.Context, user *models.User) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.state.users[user.ID]; !ok {
		return userNotFound(user.ID)
	}
	for id, existing := range r.s.state.users {
		if id != user.ID && existing.Email == user.Email {
			return apperrors.Conflict("duplicate key: email %s", user.Email)
		}
	}
	r.s.state.users[user.ID] = user.Clone()
	return nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.state.users[id]; !ok {
		return userNotFound(id)
	}
	delete(r.s.state.users, id)
	return nil
}

// memoryProjectRepository implements ProjectRepository on a MemoryStore.
type memoryProjectRepository struct {
	s *MemoryStore
}

func (r *memoryProjectRepository) Create(_ context.Context, project *models.Project) error {
	defer r.s.lockWrite()()

	if project.ID == "" {
		project.ID = models.NewID()
	}
	r.s.state.projects[project.ID] = project.Clone()
	return nil
}

func (r *memoryProjectRepository) GetAll(_ context.Context) ([]models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	projects := make([]models.Project, 0, len(r.s.state.projects))
	for _, id := range sortedKeys(r.s.state.projects) {
		projects = append(projects, r.s.state.projects[id].Clone())
	}
	return projects, nil
}

func (r *memoryProjectRepository) GetByID(_ context.Context, id string) (*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	project, ok := r.s.state.projects[id]
	if !ok {
		return nil, projectNotFound(id)
	}
	project = project.Clone()
	return &project, nil
}

func (r *memoryProjectRepository) GetByIDs(_ context.Context, ids []string) ([]models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	projects := []models.Project{}
	for _, id := range sortedKeys(r.s.state.projects) {
		if models.HasID(ids, id) {
			projects = append(projects, r.s.state.projects[id].Clone())
		}
	}
	return projects, nil
}

func (r *memoryProjectRepository) Update(_ context.Context, project *models.Project) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.state.projects[project.ID]; !ok {
		return projectNotFound(project.ID)
	}
	r.s.state.projects[project.ID] = project.Clone()
	return nil
}

func (r *memoryProjectRepository) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.state.projects[id]; !ok {
		return projectNotFound(id)
	}
	delete(r.s.state.projects, id)
	return nil
}

// memoryColumnRepository implements ColumnRepository on a MemoryStore.
type memoryColumnRepository struct {
	s *MemoryStore
}

func (r *memoryColumnRepository) Create(_ context.Context, column *models.Column) error {
	defer r.s.lockWrite()()

	if column.ID == "" {
		column.ID = models.NewID()
	}
	r.s.state.columns[column.ID] = column.Clone()
	return nil
}

func (r *memoryColumnRepository) GetAll(_ context.Context) ([]models.Column, error) {
	return r.filter(func(models.Column) bool { return true }), nil
}

func (r *memoryColumnRepository) GetByID(_ context.Context, id string) (*models.Column, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	column, ok := r.s.state.columns[id]
	if !ok {
		return nil, columnNotFound(id)
	}
	column = column.Clone()
	return &column, nil
}

func (r *memoryColumnRepository) GetByIDs(_ context.Context, ids []string) ([]models.Column, error) {
	return r.filter(func(c models.Column) bool { return models.HasID(ids, c.ID) }), nil
}

func (r *memoryColumnRepository) ListByProject(_ context.Context, projectID string) ([]models.Column, error) {
	return r.filter(func(c models.Column) bool { return c.ParentProject == projectID }), nil
}

func (r *memoryColumnRepository) filter(keep func(models.Column) bool) []models.Column {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	columns := []models.Column{}
	for _, id := range sortedKeys(r.s.state.columns) {
		if c := r.s.state.columns[id]; keep(c) {
			columns = append(columns, c.Clone())
		}
	}
	return columns
}

func (r *memoryColumnRepository) Update(_ context.Context, column *models.Column) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.state.columns[column.ID]; !ok {
		return columnNotFound(column.ID)
	}
	r.s.state.columns[column.ID] = column.Clone()
	return nil
}

func (r *memoryColumnRepository) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.state.columns[id]; !ok {
		return columnNotFound(id)
	}
	delete(r.s.state.columns, id)
	return nil
}

// memoryTaskRepository implements TaskRepository on a MemoryStore.
type memoryTaskRepository struct {
	s *MemoryStore
}

func (r *memoryTaskRepository) Create(_ context.Context, task *models.Task) error {
	defer r.s.lockWrite()()

	if task.ID == "" {
		task.ID = models.NewID()
	}
	r.s.state.tasks[task.ID] = *task
	return nil
}

func (r *memoryTaskRepository) GetAll(_ context.Context) ([]models.Task, error) {
	return r.filter(func(models.Task) bool { return true }), nil
}

func (r *memoryTaskRepository) GetByID(_ context.Context, id string) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	task, ok := r.s.state.tasks[id]
	if !ok {
		return nil, taskNotFound(id)
	}
	return &task, nil
}

func (r *memoryTaskRepository) GetByIDs(_ context.Context, ids []string) ([]models.Task, error) {
	return r.filter(func(t models.Task) bool { return models.HasID(ids, t.ID) }), nil
}

func (r *memoryTaskRepository) ListByColumn(_ context.Context, columnID string) ([]models.Task, error) {
	return r.filter(func(t models.Task) bool { return t.ParentColumn == columnID }), nil
}

func (r *memoryTaskRepository) filter(keep func(models.Task) bool) []models.Task {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tasks := []models.Task{}
	for _, id := range sortedKeys(r.s.state.tasks) {
		if t := r.s.state.tasks[id]; keep(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func (r *memoryTaskRepository) Update(_ context.Context, task *models.Task) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.state.tasks[task.ID]; !ok {
		return taskNotFound(task.ID)
	}
	r.s.state.tasks[task.ID] = *task
	return nil
}

func (r *memoryTaskRepository) Delete(_ context.Context, id string) error {
	defer r.s.lockWrite()()

	if _, ok := r.s.state.tasks[id]; !ok {
		return taskNotFound(id)
	}
	delete(r.s.state.tasks, id)
	return nil
}

func (r *memoryTaskRepository) DeleteMany(_ context.Context, ids []string) error {
	defer r.s.lockWrite()()

	for _, id := range ids {
		delete(r.s.state.tasks, id)
	}
	return nil
}
