package job

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

const idPrefix = "job-"

// Start validates the request synchronously and runs the job in the background.
func (m *implManager) Start(ctx context.Context, req Request) (*Job, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate job id: %w", err)
	}

	jobCtx, cancel := context.WithCancel(ctx)
	j := newJob(idPrefix+id.String(), req, m.now, cancel)

	m.mu.Lock()
	m.jobs[j.id] = j
	m.mu.Unlock()

	m.logger.Info(ctx, "Job %s started: %s %s", j.id, req.Kind, req.Source())
	go m.run(jobCtx, j)

	return j, nil
}

func (m *implManager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	return j, ok
}

func (m *implManager) Cancel(id string) error {
	j, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	j.Cancel()
	return nil
}

// List returns snapshots of live jobs, oldest first.
func (m *implManager) List() []Snapshot {
	m.mu.RLock()
	out := make([]Snapshot, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j.Snapshot())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID < out[b].ID
		}
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	return out
}

func (m *implManager) forget(id string) {
	m.mu.Lock()
	delete(m.jobs, id)
	m.mu.Unlock()
}
