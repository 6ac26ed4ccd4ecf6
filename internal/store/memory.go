package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kudos/internal/feed"
	"kudos/internal/models"
)

// Memory is an in-process Store used for local development and tests.
// Kudos are kept in insertion order, which is its storage-default order.
type Memory struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]models.Profile
	kudos    []models.Kudo
	now      func() time.Time
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[uuid.UUID]models.Profile),
		now:      time.Now,
	}
}

// AddProfile inserts or replaces a user profile.
func (m *Memory) AddProfile(p models.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

// AddKudo inserts a fully formed kudo, preserving its CreatedAt.
func (m *Memory) AddKudo(k models.Kudo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kudos = append(m.kudos, k)
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) OtherProfiles(_ context.Context, id uuid.UUID) ([]models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Profile{}
	for pid, p := range m.profiles {
		if pid != id {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Profile) int {
		if c := strings.Compare(a.FirstName, b.FirstName); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (m *Memory) SetProfilePicture(_ context.Context, id uuid.UUID, locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.ProfilePicture = locator
	m.profiles[id] = p
	return nil
}

// withCurrentAuthor refreshes the embedded author profile, which in the
// relational store is a join and so always current.
func (m *Memory) withCurrentAuthor(k models.Kudo) models.Kudo {
	if p, ok := m.profiles[k.Author.ID]; ok {
		k.Author = p
	}
	return k
}

func (m *Memory) FilteredKudos(_ context.Context, recipientID uuid.UUID, sort feed.Sort, filter feed.Predicate) ([]models.Kudo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	received := make([]models.Kudo, 0, len(m.kudos))
	for _, k := range m.kudos {
		if k.RecipientID == recipientID {
			received = append(received, m.withCurrentAuthor(k))
		}
	}
	out := feed.Select(filter, received)
	sort.Apply(out)
	return out, nil
}

func (m *Memory) RecentKudos(_ context.Context, limit int) ([]models.Kudo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]models.Kudo, 0, len(m.kudos))
	for _, k := range m.kudos {
		k = m.withCurrentAuthor(k)
		if r, ok := m.profiles[k.RecipientID]; ok {
			k.Recipient = &r
		}
		all = append(all, k)
	}
	feed.SortDate.Apply(all)
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *Memory) CreateKudo(_ context.Context, in models.NewKudo) (*models.Kudo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	author, ok := m.profiles[in.AuthorID]
	if !ok {
		return nil, fmt.Errorf("author: %w", ErrNotFound)
	}
	if _, ok := m.profiles[in.RecipientID]; !ok {
		return nil, fmt.Errorf("recipient: %w", ErrNotFound)
	}
	k := models.Kudo{
		ID:          uuid.New(),
		Message:     in.Message,
		Style:       in.Style,
		Author:      author,
		RecipientID: in.RecipientID,
		CreatedAt:   m.now().UTC(),
	}
	m.kudos = append(m.kudos, k)
	return &k, nil
}
