package repository

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        ListCriteria
		wantPage  int
		wantLimit int
	}{
		{"zero values", ListCriteria{}, 1, 20},
		{"negative page", ListCriteria{Page: -3, Limit: 10}, 1, 10},
		{"limit capped", ListCriteria{Page: 2, Limit: 500}, 2, 100},
		{"kept as-is", ListCriteria{Page: 4, Limit: 50}, 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
				t.Errorf("Normalize() = page %d limit %d, want page %d limit %d",
					got.Page, got.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestNormalizeRejectsUnknownSortColumn(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"known column kept", "updated_at", "updated_at ASC"},
		{"unknown column dropped", "author_id", "id ASC"},
		{"expression dropped", "(CASE WHEN (SELECT 1)=1 THEN id END)", "id ASC"},
		{"injection suffix dropped", "id; DROP TABLE contents", "id ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ListCriteria{SortBy: tt.in}.Normalize().OrderClause()
			if got != tt.want {
				t.Errorf("OrderClause() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	c := ListCriteria{Page: 3, Limit: 25}.Normalize()
	if got := c.Offset(); got != 50 {
		t.Errorf("Offset() = %d, want 50", got)
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		name string
		in   ListCriteria
		want string
	}{
		{"default", ListCriteria{}, "id ASC"},
		{"column asc", ListCriteria{SortBy: "updated_at"}, "updated_at ASC"},
		{"column desc", ListCriteria{SortBy: "created_at", SortDesc: true}, "created_at DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.OrderClause(); got != tt.want {
				t.Errorf("OrderClause() = %q, want %q", got, tt.want)
			}
		})
	}
}
