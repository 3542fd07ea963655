package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/labstack-dev/labledger/internal/domain/models"
)

// fakeItemStore is an in-memory ItemStore with the same versioned-write
// semantics the MongoDB repository provides.
type fakeItemStore struct {
	mu    sync.Mutex
	items map[string]models.Item

	failUpdates int // force this many ErrVersionConflict results first
	failInserts bool
	getErr      error
}

func newFakeItemStore(items ...models.Item) *fakeItemStore {
	s := &fakeItemStore{items: make(map[string]models.Item)}
	for _, item := range items {
		s.items[item.ID] = item
	}
	return s
}

func (s *fakeItemStore) Get(_ context.Context, id string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := item
	return &copied, nil
}

func (s *fakeItemStore) Insert(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInserts {
		return errStoreDown
	}
	for _, existing := range s.items {
		if existing.LabID == item.LabID && existing.Name == item.Name && existing.Type == item.Type {
			return ErrVersionConflict
		}
	}
	s.items[item.ID] = *item
	return nil
}

func (s *fakeItemStore) UpdateVersioned(_ context.Context, item *models.Item, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdates > 0 {
		s.failUpdates--
		return ErrVersionConflict
	}
	current, ok := s.items[item.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != expectedVersion {
		return ErrVersionConflict
	}
	s.items[item.ID] = *item
	return nil
}

func (s *fakeItemStore) FindByCatalogIdentity(_ context.Context, labID, name string, itemType models.ItemType) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.LabID == labID && item.Name == name && item.Type == itemType {
			copied := item
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeItemStore) quantity(id string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id].Quantity
}

// fakeLedgerLog is an in-memory append-only log.
type fakeLedgerLog struct {
	mu      sync.Mutex
	entries []models.StockLogEntry

	failAppends int
}

func (l *fakeLedgerLog) Append(_ context.Context, entry *models.StockLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAppends > 0 {
		l.failAppends--
		return errStoreDown
	}
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *fakeLedgerLog) ListByItem(_ context.Context, itemID string, query models.HistoryQuery) ([]models.StockLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	matched := make([]models.StockLogEntry, 0)
	for _, entry := range l.entries {
		if entry.ItemID == itemID {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].OccurredAt.Equal(matched[j].OccurredAt) {
			return matched[i].OccurredAt.After(matched[j].OccurredAt)
		}
		return matched[i].ID > matched[j].ID
	})

	start := int(query.Skip())
	if start > len(matched) {
		return []models.StockLogEntry{}, nil
	}
	end := start + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (l *fakeLedgerLog) CountByMove(_ context.Context, moveID string, op models.StockOperation) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for _, entry := range l.entries {
		if entry.MoveID == moveID && entry.Operation == op {
			n++
		}
	}
	return n, nil
}

func (l *fakeLedgerLog) byItem(itemID string) []models.StockLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.StockLogEntry, 0)
	for _, entry := range l.entries {
		if entry.ItemID == itemID {
			out = append(out, entry)
		}
	}
	return out
}

func (l *fakeLedgerLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// fakeLabStore recognizes a fixed set of labs.
type fakeLabStore struct {
	labs map[string]bool
}

func newFakeLabStore(ids ...string) *fakeLabStore {
	labs := make(map[string]bool)
	for _, id := range ids {
		labs[id] = true
	}
	return &fakeLabStore{labs: labs}
}

func (s *fakeLabStore) Exists(_ context.Context, id string) (bool, error) {
	return s.labs[id], nil
}

var errStoreDown = errors.New("store down")

func testItem(id, labID string, quantity int64) models.Item {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return models.Item{
		ID:        id,
		Name:      "ethanol 96%",
		Type:      models.ItemConsumable,
		LabID:     labID,
		Quantity:  quantity,
		Unit:      "L",
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
