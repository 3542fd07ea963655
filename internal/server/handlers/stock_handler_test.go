package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labstack-dev/labledger/internal/domain/models"
	"github.com/labstack-dev/labledger/internal/service/ledger"
)

// memItemStore is a minimal in-memory ledger.ItemStore for handler tests.
type memItemStore struct {
	mu    sync.Mutex
	items map[string]models.Item
}

func (s *memItemStore) Get(_ context.Context, id string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	copied := item
	return &copied, nil
}

func (s *memItemStore) Insert(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = *item
	return nil
}

func (s *memItemStore) UpdateVersioned(_ context.Context, item *models.Item, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.items[item.ID]
	if !ok {
		return ledger.ErrNotFound
	}
	if current.Version != expectedVersion {
		return ledger.ErrVersionConflict
	}
	s.items[item.ID] = *item
	return nil
}

func (s *memItemStore) FindByCatalogIdentity(_ context.Context, labID, name string, itemType models.ItemType) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.LabID == labID && item.Name == name && item.Type == itemType {
			copied := item
			return &copied, nil
		}
	}
	return nil, ledger.ErrNotFound
}

type memLedgerLog struct {
	mu      sync.Mutex
	entries []models.StockLogEntry
}

func (l *memLedgerLog) Append(_ context.Context, entry *models.StockLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *memLedgerLog) ListByItem(_ context.Context, itemID string, query models.HistoryQuery) ([]models.StockLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.StockLogEntry, 0)
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].ItemID == itemID {
			out = append(out, l.entries[i])
		}
	}
	return out, nil
}

func (l *memLedgerLog) CountByMove(_ context.Context, moveID string, op models.StockOperation) (int64, error) {
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

type memLabStore struct{ labs map[string]bool }

func (s *memLabStore) Exists(_ context.Context, id string) (bool, error) {
	return s.labs[id], nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	items := &memItemStore{items: map[string]models.Item{
		"it-1": {
			ID: "it-1", Name: "acetone", Type: models.ItemConsumable,
			LabID: "lab-1", Quantity: 10, Unit: "L", Version: 1,
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		},
	}}
	svc := ledger.NewService(items, &memLedgerLog{}, &memLabStore{labs: map[string]bool{"lab-1": true, "lab-2": true}}, nil)
	handler := NewStockHandler(svc, nil)

	r := gin.New()
	r.POST("/api/items/:id/stock/add", handler.AddStock)
	r.POST("/api/items/:id/stock/remove", handler.RemoveStock)
	r.POST("/api/items/:id/stock/move", handler.MoveStock)
	r.POST("/api/items/:id/stock/adjust", handler.AdjustStock)
	r.GET("/api/items/:id/history", handler.History)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, actor string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(actorHeader, actor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddStockEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/items/it-1/stock/add", `{"quantity": 5}`, "user-1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result models.StockOperationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Item.Quantity != 15 {
		t.Errorf("quantity = %d, want 15", result.Item.Quantity)
	}
	if len(result.LogEntries) != 1 || result.LogEntries[0].ActorID != "user-1" {
		t.Errorf("log entries = %+v, want one entry attributed to user-1", result.LogEntries)
	}
}

func TestMissingActorHeaderRejected(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/items/it-1/stock/add", `{"quantity": 5}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestInvalidBodyRejected(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/items/it-1/stock/remove", `{"quantity": "many"}`, "user-1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestErrorKindStatusMapping(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantKind   string
	}{
		{"unknown item", "/api/items/nope/stock/add", `{"quantity": 1}`, http.StatusNotFound, "item_not_found"},
		{"insufficient stock", "/api/items/it-1/stock/remove", `{"quantity": 99, "reason": "usage"}`, http.StatusConflict, "insufficient_stock"},
		{"invalid quantity", "/api/items/it-1/stock/add", `{"quantity": -1}`, http.StatusBadRequest, "invalid_quantity"},
		{"unknown lab", "/api/items/it-1/stock/move", `{"quantity": 1, "target_lab_id": "lab-9"}`, http.StatusNotFound, "lab_not_found"},
		{"stale location", "/api/items/it-1/stock/move", `{"quantity": 1, "target_lab_id": "lab-2", "source_lab_id": "lab-3"}`, http.StatusConflict, "stale_location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, tt.path, tt.body, "user-1")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["kind"] != tt.wantKind {
				t.Errorf("kind = %v, want %s", body["kind"], tt.wantKind)
			}
		})
	}
}

func TestHistoryEndpoint(t *testing.T) {
	r := newTestRouter(t)

	for i := 0; i < 3; i++ {
		if w := doJSON(t, r, http.MethodPost, "/api/items/it-1/stock/add", `{"quantity": 1}`, "user-1"); w.Code != http.StatusOK {
			t.Fatalf("seed add failed: %d", w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/items/it-1/history?page=1&limit=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Entries []models.StockLogEntry `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Entries) == 0 {
		t.Fatal("expected history entries")
	}
}
