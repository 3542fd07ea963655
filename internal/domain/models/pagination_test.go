package models

import "testing"

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Pagination
		wantPage  int
		wantLimit int
	}{
		{"zero values default", Pagination{}, 1, 20},
		{"negative page clamps", Pagination{Page: -2, Limit: 10}, 1, 10},
		{"limit over max clamps", Pagination{Page: 3, Limit: 500}, 3, 100},
		{"in range untouched", Pagination{Page: 2, Limit: 50}, 2, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
				t.Errorf("Normalize() = %+v, want page=%d limit=%d", got, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestPaginationSkip(t *testing.T) {
	p := Pagination{Page: 4, Limit: 25}
	if got := p.Skip(); got != 75 {
		t.Errorf("Skip() = %d, want 75", got)
	}
}

func TestItemBelowMinimum(t *testing.T) {
	threshold := int64(5)

	noThreshold := Item{Quantity: 0}
	if noThreshold.BelowMinimum() {
		t.Error("item without threshold must never alert")
	}

	at := Item{Quantity: 5, MinimumQuantity: &threshold}
	if !at.BelowMinimum() {
		t.Error("item at threshold counts as low")
	}

	above := Item{Quantity: 6, MinimumQuantity: &threshold}
	if above.BelowMinimum() {
		t.Error("item above threshold must not alert")
	}
}
