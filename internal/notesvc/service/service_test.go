package service

import (
	"context"
	"sync"
	"testing"

	"github.com/avvvet/hobheap-services/internal/notesvc/models"
	"github.com/avvvet/hobheap-services/internal/notesvc/store"
	"github.com/stretchr/testify/require"
)

type published struct {
	Type string
	Data any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(eventType string, data any) {
	p.mu.Lock()
	p.events = append(p.events, published{eventType, data})
	p.mu.Unlock()
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// conflictManager makes the next `failures` version appends lose the
// version number race.
type conflictManager struct {
	*store.MemoryManager
	failures int
}

func (m *conflictManager) RunInTx(ctx context.Context, fn func(ctx context.Context, r store.Repositories) error) error {
	return m.MemoryManager.RunInTx(ctx, func(ctx context.Context, r store.Repositories) error {
		return fn(ctx, conflictRepositories{Repositories: r, failures: &m.failures})
	})
}

type conflictRepositories struct {
	store.Repositories
	failures *int
}

func (r conflictRepositories) Versions() store.CardVersionRepository {
	return conflictVersions{CardVersionRepository: r.Repositories.Versions(), failures: r.failures}
}

type conflictVersions struct {
	store.CardVersionRepository
	failures *int
}

func (v conflictVersions) Append(ctx context.Context, cardID int64, content string) (*models.CardVersion, error) {
	if *v.failures > 0 {
		*v.failures--
		return nil, store.ErrConflict
	}
	return v.CardVersionRepository.Append(ctx, cardID, content)
}

func mustRegister(t *testing.T, m store.Manager, email string) *models.User {
	t.Helper()
	u, err := NewUserService(m).Register(context.Background(), RegisterInput{Email: email})
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T { return &v }
