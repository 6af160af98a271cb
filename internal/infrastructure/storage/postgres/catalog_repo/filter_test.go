package catalog_repo

import (
	"testing"

	"opstock/internal/core/id"
	"opstock/internal/domain"
)

func testRepo() *BaseCatalogRepo[any] {
	return NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "code", "name"}, func() any { return nil })
}

func TestApplyListFilter_SQL(t *testing.T) {
	repo := testRepo()

	tests := []struct {
		name     string
		filter   domain.ListFilter
		wantSQL  string
		wantArgs int
	}{
		{
			name:     "default excludes deleted",
			filter:   domain.ListFilter{},
			wantSQL:  "SELECT id, code, name FROM test_table WHERE deletion_mark = $1",
			wantArgs: 1,
		},
		{
			name:     "include deleted drops the mark filter",
			filter:   domain.ListFilter{IncludeDeleted: true},
			wantSQL:  "SELECT id, code, name FROM test_table",
			wantArgs: 0,
		},
		{
			name:     "search matches name or code",
			filter:   domain.ListFilter{Search: "cement"},
			wantSQL:  "SELECT id, code, name FROM test_table WHERE deletion_mark = $1 AND (name ILIKE $2 OR code ILIKE $3)",
			wantArgs: 3,
		},
		{
			name:     "ids filter",
			filter:   domain.ListFilter{IncludeDeleted: true, IDs: []id.ID{id.New(), id.New()}},
			wantSQL:  "SELECT id, code, name FROM test_table WHERE id IN ($1,$2)",
			wantArgs: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := repo.ApplyListFilter(repo.baseSelect(), tt.filter)

			sql, args, err := q.ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args count mismatch\nwant: %d\ngot:  %d", tt.wantArgs, len(args))
			}
		})
	}
}

func TestParseOrderBy(t *testing.T) {
	repo := testRepo()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "name ASC", false},
		{"name", "name ASC", false},
		{"-code", "code DESC", false},
		{"+id", "id ASC", false},
		{"drop table", "", true},
		{"-", "", true},
	}

	for _, tt := range tests {
		got, err := repo.parseOrderBy(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseOrderBy(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseOrderBy(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseOrderBy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
