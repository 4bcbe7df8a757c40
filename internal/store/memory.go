package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bethropolis/easel/internal/document"
)

// Memory is an in-process Store, used in tests and with driver "memory".
type Memory struct {
	mu       sync.RWMutex
	projects map[string]*Project
	now      func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{projects: make(map[string]*Project), now: time.Now}
}

func copyProject(p *Project) *Project {
	c := *p
	return &c
}

func (m *Memory) Get(ctx context.Context, id string) (*Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return copyProject(p), nil
}

func (m *Memory) Save(ctx context.Context, id string, snap document.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.IsZero() {
		return fmt.Errorf("save %s: %w", id, document.ErrInvalidSnapshot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return fmt.Errorf("save %s: %w", id, ErrNotFound)
	}
	p.Snapshot = snap
	p.UpdatedAt = m.now()
	return nil
}

func (m *Memory) Create(ctx context.Context, params CreateParams) (*Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := initialSnapshot(params)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	now := m.now()
	p := &Project{
		ID:        uuid.NewString(),
		Name:      projectName(params.Name),
		Snapshot:  snap,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.mu.Lock()
	m.projects[p.ID] = p
	m.mu.Unlock()
	return copyProject(p), nil
}

func (m *Memory) List(ctx context.Context, page Page) (*ProjectPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page = page.Normalize()
	m.mu.RLock()
	all := make([]*Project, 0, len(m.projects))
	for _, p := range m.projects {
		all = append(all, copyProject(p))
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})
	total := len(all)
	start := min(page.Offset(), total)
	end := min(start+page.Limit, total)
	return newProjectPage(all[start:end], page, total), nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	delete(m.projects, id)
	return nil
}

func (m *Memory) Close() error { return nil }
