package datagrid

import (
	"strings"

	"github.com/xraph/datagrid/entity"
)

// QueryBuilder assembles the paged SELECT and the two COUNT queries for one
// listing request. A fresh builder is constructed per request and discarded
// with it; builders are never shared across requests.
//
// Identifiers (table, alias, columns) come from the validated descriptor
// and registered mutators; every request-supplied value is emitted as a '?'
// placeholder and returned in the args slice. Backends that use numbered
// placeholders rebind before executing.
type QueryBuilder struct {
	table       string
	alias       string
	indexColumn string

	columns    []entity.Column
	searchable []string
	joins      []entity.Join
	baseWhere  []entity.Where
	filter     []entity.Where
	groupBy    string

	orderColumn int
	orderDir    SortDir
	start       int
	length      int
	search      string
}

// NewQueryBuilder seeds a builder from an entity descriptor.
func NewQueryBuilder(d *entity.Descriptor) *QueryBuilder {
	return &QueryBuilder{
		table:       d.Table,
		alias:       d.Alias,
		indexColumn: d.IndexColumn,
		columns:     d.Columns,
		searchable:  d.Searchable,
		joins:       d.BaseJoins,
		baseWhere:   d.BaseWhere,
		orderDir:    SortAsc,
		length:      -1,
	}
}

// Columns replaces the projected column list.
func (b *QueryBuilder) Columns(cols []entity.Column) *QueryBuilder {
	b.columns = cols
	return b
}

// Searchable replaces the searchable column list.
func (b *QueryBuilder) Searchable(cols []string) *QueryBuilder {
	b.searchable = cols
	return b
}

// Joins replaces the join list.
func (b *QueryBuilder) Joins(joins []entity.Join) *QueryBuilder {
	b.joins = joins
	return b
}

// Where replaces the structural predicates honored by every query,
// including the unfiltered total count.
func (b *QueryBuilder) Where(where []entity.Where) *QueryBuilder {
	b.baseWhere = where
	return b
}

// Filter replaces the ad-hoc predicates (extension-contributed and
// relation-scoping clauses) excluded from the unfiltered total count.
func (b *QueryBuilder) Filter(where []entity.Where) *QueryBuilder {
	b.filter = where
	return b
}

// GroupBy sets the GROUP BY expression; empty clears it.
func (b *QueryBuilder) GroupBy(expr string) *QueryBuilder {
	b.groupBy = expr
	return b
}

// Ordering sets the sort column index and direction. An out-of-range or
// non-sortable index falls back to the entity's index column at build time.
func (b *QueryBuilder) Ordering(column int, dir SortDir) *QueryBuilder {
	b.orderColumn = column
	b.orderDir = ParseSortDir(string(dir))
	return b
}

// Pagination sets the row offset and page size; length -1 means no limit.
func (b *QueryBuilder) Pagination(start, length int) *QueryBuilder {
	if start < 0 {
		start = 0
	}
	b.start = start
	b.length = length
	return b
}

// Search sets the raw search value; empty disables the search predicate.
func (b *QueryBuilder) Search(value string) *QueryBuilder {
	b.search = value
	return b
}

// SelectQuery emits the paged SELECT with all bound arguments.
func (b *QueryBuilder) SelectQuery() (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	hasIndex := false
	for i, c := range b.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Expr)
		sb.WriteString(" AS ")
		sb.WriteString(c.Alias)
		if c.Alias == b.indexColumn {
			hasIndex = true
		}
	}
	// The primary key always rides along: it is the row identity source.
	if !hasIndex {
		sb.WriteString(", ")
		sb.WriteString(b.qualifiedIndex())
		sb.WriteString(" AS ")
		sb.WriteString(b.indexColumn)
	}

	b.writeFrom(&sb)
	args = b.writeWhere(&sb, args, true)

	if b.groupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(b.groupBy)
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(b.orderExpr())
	sb.WriteString(" ")
	sb.WriteString(strings.ToUpper(string(b.orderDir)))

	if b.length >= 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, b.length, b.start)
	}

	return sb.String(), args
}

// CountTotalQuery emits the unfiltered count: structural predicates only,
// no search, no ad-hoc filters.
func (b *QueryBuilder) CountTotalQuery() (string, []any) {
	return b.countQuery(false)
}

// CountFilteredQuery emits the filtered count: structural predicates plus
// filters plus the search predicate.
func (b *QueryBuilder) CountFilteredQuery() (string, []any) {
	return b.countQuery(true)
}

func (b *QueryBuilder) countQuery(filtered bool) (string, []any) {
	var sb strings.Builder
	var args []any

	// COUNT(DISTINCT pk) keeps counts correct under one-to-many joins when
	// the paged query groups rows.
	if b.groupBy != "" {
		sb.WriteString("SELECT COUNT(DISTINCT ")
		sb.WriteString(b.qualifiedIndex())
		sb.WriteString(")")
	} else {
		sb.WriteString("SELECT COUNT(*)")
	}

	b.writeFrom(&sb)
	args = b.writeWhere(&sb, args, filtered)

	return sb.String(), args
}

func (b *QueryBuilder) writeFrom(sb *strings.Builder) {
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)
	sb.WriteString(" ")
	sb.WriteString(b.alias)
	for _, j := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(j.Clause)
	}
}

// writeWhere appends the WHERE clause. Build order is fixed: base
// predicates, then filters (extension-contributed, then relation scoping),
// then the search predicate, all AND-joined.
func (b *QueryBuilder) writeWhere(sb *strings.Builder, args []any, filtered bool) []any {
	clauses := make([]string, 0, len(b.baseWhere)+len(b.filter)+1)
	for _, w := range b.baseWhere {
		clauses = append(clauses, w.Expr)
		args = append(args, w.Args...)
	}
	if filtered {
		for _, w := range b.filter {
			clauses = append(clauses, w.Expr)
			args = append(args, w.Args...)
		}
		if expr, searchArgs, ok := b.searchPredicate(); ok {
			clauses = append(clauses, expr)
			args = append(args, searchArgs...)
		}
	}
	if len(clauses) == 0 {
		return args
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(clauses, " AND "))
	return args
}

// searchPredicate OR-joins a case-insensitive substring match across all
// searchable columns. The search is ANDed with everything else; it never
// ORs across unrelated predicates.
func (b *QueryBuilder) searchPredicate() (string, []any, bool) {
	if b.search == "" || len(b.searchable) == 0 {
		return "", nil, false
	}
	needle := "%" + escapeLike(strings.ToLower(b.search)) + "%"
	parts := make([]string, len(b.searchable))
	args := make([]any, len(b.searchable))
	for i, col := range b.searchable {
		parts[i] = "LOWER(" + col + ") LIKE ? ESCAPE '\\'"
		args[i] = needle
	}
	return "(" + strings.Join(parts, " OR ") + ")", args, true
}

func (b *QueryBuilder) orderExpr() string {
	if b.orderColumn >= 0 && b.orderColumn < len(b.columns) && b.columns[b.orderColumn].Sortable {
		return b.columns[b.orderColumn].Expr
	}
	return b.qualifiedIndex()
}

func (b *QueryBuilder) qualifiedIndex() string {
	if strings.Contains(b.indexColumn, ".") {
		return b.indexColumn
	}
	return b.alias + "." + b.indexColumn
}

// escapeLike escapes LIKE metacharacters so a literal '%' or '_' in user
// input cannot act as a wildcard.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// failClosed is the structurally unsatisfiable predicate injected when the
// caller resolves to no relation: the query still executes and returns zero
// rows instead of erroring or, worse, returning everything.
var failClosed = entity.Where{Expr: "1 = 0"}
