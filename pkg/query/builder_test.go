package query_test

import (
	"reflect"
	"testing"

	"github.com/JaimeStill/webcarros/pkg/query"
)

func TestBuilder_BuildSelect_NoConditions(t *testing.T) {
	b := query.NewBuilder("documents", "data")

	sql, args := b.BuildSelect("id", "data")

	wantSQL := "SELECT id, data FROM documents"
	if sql != wantSQL {
		t.Errorf("BuildSelect() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("BuildSelect() args = %v, want empty", args)
	}
}

func TestBuilder_WhereColumn(t *testing.T) {
	b := query.NewBuilder("documents", "data").WhereColumn("collection", "cars")

	sql, args := b.BuildSelect("id")

	wantSQL := "SELECT id FROM documents WHERE collection = $1"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if !reflect.DeepEqual(args, []any{"cars"}) {
		t.Errorf("args = %v, want [cars]", args)
	}
}

func TestBuilder_PrefixRange(t *testing.T) {
	b := query.NewBuilder("documents", "data").
		WhereColumn("collection", "cars").
		WhereField("name", query.OpGreaterEq, "ON").
		WhereField("name", query.OpLessEq, "ON")

	sql, args := b.BuildSelect("id", "data")

	wantSQL := `SELECT id, data FROM documents WHERE collection = $1 AND (data ->> $2) COLLATE "C" >= $3 AND (data ->> $4) COLLATE "C" <= $5`
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}

	wantArgs := []any{"cars", "name", "ON", "name", "ON"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestBuilder_OrderByField(t *testing.T) {
	b := query.NewBuilder("documents", "data").
		WhereColumn("collection", "cars").
		OrderByField("createdAt", true)

	sql, args := b.BuildSelect("id")

	wantSQL := `SELECT id FROM documents WHERE collection = $1 ORDER BY (data ->> 'createdAt') COLLATE "C" DESC`
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if !reflect.DeepEqual(args, []any{"cars"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuilder_OrderByField_Ascending(t *testing.T) {
	sql, _ := query.NewBuilder("documents", "data").
		OrderByField("name", false).
		BuildSelect("id")

	wantSQL := `SELECT id FROM documents ORDER BY (data ->> 'name') COLLATE "C" ASC`
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
}

func TestBuilder_OrderByField_EmptyClears(t *testing.T) {
	sql, _ := query.NewBuilder("documents", "data").
		OrderByField("name", false).
		OrderByField("", false).
		BuildSelect("id")

	if sql != "SELECT id FROM documents" {
		t.Errorf("sql = %q, want no ORDER BY", sql)
	}
}

func TestBuilder_WhereField_InvalidOpIgnored(t *testing.T) {
	sql, args := query.NewBuilder("documents", "data").
		WhereField("name", "LIKE", "x").
		BuildSelect("id")

	if sql != "SELECT id FROM documents" {
		t.Errorf("sql = %q, want no WHERE", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilder_BuildCount(t *testing.T) {
	sql, args := query.NewBuilder("documents", "data").
		WhereColumn("collection", "cars").
		WhereField("uid", query.OpEqual, "u-1").
		BuildCount()

	wantSQL := `SELECT COUNT(*) FROM documents WHERE collection = $1 AND (data ->> 'uid') COLLATE "C" = $2`
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 2 {
		t.Errorf("len(args) = %d, want 2", len(args))
	}
}

func TestBuilder_WhereField_InvalidFieldIgnored(t *testing.T) {
	tests := []string{"", "name'", "data->>x", "1st", "a b"}

	for _, field := range tests {
		t.Run(field, func(t *testing.T) {
			sql, args := query.NewBuilder("documents", "data").
				WhereField(field, query.OpEqual, "x").
				OrderByField(field, false).
				BuildSelect("id")

			if sql != "SELECT id FROM documents" {
				t.Errorf("sql = %q, want no WHERE or ORDER BY", sql)
			}
			if len(args) != 0 {
				t.Errorf("args = %v, want empty", args)
			}
		})
	}
}

func TestValidOp(t *testing.T) {
	tests := []struct {
		op   string
		want bool
	}{
		{"=", true},
		{">", true},
		{">=", true},
		{"<", true},
		{"<=", true},
		{"==", false},
		{"!=", false},
		{"; DROP", false},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			if got := query.ValidOp(tt.op); got != tt.want {
				t.Errorf("ValidOp(%q) = %v, want %v", tt.op, got, tt.want)
			}
		})
	}
}
