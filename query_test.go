package datagrid

import (
	"reflect"
	"strings"
	"testing"

	"github.com/xraph/datagrid/entity"
)

func testDescriptor() *entity.Descriptor {
	return &entity.Descriptor{
		Name:        "customer",
		Table:       "customers",
		Alias:       "c",
		IndexColumn: "id",
		Columns: []entity.Column{
			{Expr: "c.company_name", Alias: "company_name", Sortable: true},
			{Expr: "c.city", Alias: "city"},
		},
		Searchable: []string{"c.company_name", "c.city"},
	}
}

func TestSelectQuery_Defaults(t *testing.T) {
	query, args := NewQueryBuilder(testDescriptor()).SelectQuery()

	want := "SELECT c.company_name AS company_name, c.city AS city, c.id AS id" +
		" FROM customers c ORDER BY c.id ASC"
	if query != want {
		t.Errorf("query mismatch:\n got: %s\nwant: %s", query, want)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestSelectQuery_Pagination(t *testing.T) {
	query, args := NewQueryBuilder(testDescriptor()).
		Pagination(10, 25).
		SelectQuery()

	if !strings.HasSuffix(query, " LIMIT ? OFFSET ?") {
		t.Errorf("expected LIMIT/OFFSET suffix, got %s", query)
	}
	if !reflect.DeepEqual(args, []any{25, 10}) {
		t.Errorf("expected args [25 10], got %v", args)
	}
}

func TestSelectQuery_NoLimitForFullResult(t *testing.T) {
	query, args := NewQueryBuilder(testDescriptor()).
		Pagination(0, -1).
		SelectQuery()

	if strings.Contains(query, "LIMIT") {
		t.Errorf("length -1 must not emit LIMIT, got %s", query)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestSelectQuery_Ordering(t *testing.T) {
	tests := []struct {
		name   string
		column int
		dir    SortDir
		want   string
	}{
		{"sortable column", 0, SortDesc, "ORDER BY c.company_name DESC"},
		{"non-sortable falls back", 1, SortAsc, "ORDER BY c.id ASC"},
		{"out of range falls back", 9, SortAsc, "ORDER BY c.id ASC"},
		{"negative falls back", -1, SortDesc, "ORDER BY c.id DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, _ := NewQueryBuilder(testDescriptor()).
				Ordering(tt.column, tt.dir).
				SelectQuery()
			if !strings.Contains(query, tt.want) {
				t.Errorf("expected %q in %q", tt.want, query)
			}
		})
	}
}

func TestSelectQuery_IndexColumnNotDuplicated(t *testing.T) {
	d := testDescriptor()
	d.Columns = append(d.Columns, entity.Column{Expr: "c.id", Alias: "id", Sortable: true})

	query, _ := NewQueryBuilder(d).SelectQuery()

	if n := strings.Count(query, "c.id AS id"); n != 1 {
		t.Errorf("expected exactly one id projection, got %d in %q", n, query)
	}
}

func TestSelectQuery_SearchPredicate(t *testing.T) {
	query, args := NewQueryBuilder(testDescriptor()).
		Search("Acme").
		SelectQuery()

	want := `(LOWER(c.company_name) LIKE ? ESCAPE '\' OR LOWER(c.city) LIKE ? ESCAPE '\')`
	if !strings.Contains(query, want) {
		t.Errorf("expected search predicate %q in %q", want, query)
	}
	if !reflect.DeepEqual(args, []any{"%acme%", "%acme%"}) {
		t.Errorf("expected lowercased needles, got %v", args)
	}
}

func TestSelectQuery_SearchEscapesWildcards(t *testing.T) {
	_, args := NewQueryBuilder(testDescriptor()).
		Search(`50%_off\`).
		SelectQuery()

	want := `%50\%\_off\\%`
	if len(args) == 0 || args[0] != want {
		t.Errorf("expected escaped needle %q, got %v", want, args)
	}
}

func TestCountQueries_FilterSeparation(t *testing.T) {
	d := testDescriptor()
	d.BaseWhere = []entity.Where{{Expr: "c.deleted_at IS NULL"}}

	qb := NewQueryBuilder(d).
		Filter([]entity.Where{{Expr: "c.status = ?", Args: []any{"active"}}}).
		Search("acme")

	totalQuery, totalArgs := qb.CountTotalQuery()
	if strings.Contains(totalQuery, "c.status") || strings.Contains(totalQuery, "LIKE") {
		t.Errorf("total count must ignore filters and search, got %q", totalQuery)
	}
	if !strings.Contains(totalQuery, "c.deleted_at IS NULL") {
		t.Errorf("total count must keep structural predicates, got %q", totalQuery)
	}
	if len(totalArgs) != 0 {
		t.Errorf("expected no total args, got %v", totalArgs)
	}

	filteredQuery, filteredArgs := qb.CountFilteredQuery()
	for _, frag := range []string{"c.deleted_at IS NULL", "c.status = ?", "LIKE"} {
		if !strings.Contains(filteredQuery, frag) {
			t.Errorf("expected %q in filtered count %q", frag, filteredQuery)
		}
	}
	// status arg, then two search needles.
	if len(filteredArgs) != 3 {
		t.Errorf("expected 3 filtered args, got %v", filteredArgs)
	}
}

func TestCountQuery_DistinctUnderGroupBy(t *testing.T) {
	qb := NewQueryBuilder(testDescriptor()).GroupBy("c.id")

	query, _ := qb.CountFilteredQuery()
	if !strings.HasPrefix(query, "SELECT COUNT(DISTINCT c.id)") {
		t.Errorf("expected COUNT(DISTINCT) under GROUP BY, got %q", query)
	}
	if strings.Contains(query, "GROUP BY") {
		t.Errorf("count query must not carry GROUP BY, got %q", query)
	}
}

func TestFailClosedPredicate(t *testing.T) {
	qb := NewQueryBuilder(testDescriptor()).
		Filter([]entity.Where{failClosed})

	filtered, _ := qb.CountFilteredQuery()
	if !strings.Contains(filtered, "1 = 0") {
		t.Errorf("expected fail-closed predicate in %q", filtered)
	}

	total, _ := qb.CountTotalQuery()
	if strings.Contains(total, "1 = 0") {
		t.Errorf("total count must not carry fail-closed predicate, got %q", total)
	}
}
