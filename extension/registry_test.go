package extension

import (
	"testing"

	"github.com/xraph/datagrid/entity"
)

func appendWhere(expr string) WhereFunc {
	return func(_ Context, where []entity.Where) []entity.Where {
		return append(where, entity.Where{Expr: expr})
	}
}

func TestApplyWhere_PriorityOrder(t *testing.T) {
	r := NewRegistry()
	ctx := NewContext("customer", "", "u1", 0, nil)

	// Registered out of order; priority 5 must still run first.
	r.OnWhere("customer", "second", 10, appendWhere("b"))
	r.OnWhere("customer", "first", 5, appendWhere("a"))

	where := r.ApplyWhere(ctx, nil)
	if len(where) != 2 || where[0].Expr != "a" || where[1].Expr != "b" {
		t.Errorf("expected priority order [a b], got %v", where)
	}
}

func TestApplyWhere_RegistrationOrderBreaksTies(t *testing.T) {
	r := NewRegistry()
	ctx := NewContext("customer", "", "u1", 0, nil)

	r.OnWhere("customer", "x", 10, appendWhere("x"))
	r.OnWhere("customer", "y", 10, appendWhere("y"))

	where := r.ApplyWhere(ctx, nil)
	if len(where) != 2 || where[0].Expr != "x" || where[1].Expr != "y" {
		t.Errorf("expected registration order [x y], got %v", where)
	}
}

func TestNamedReRegistrationReplaces(t *testing.T) {
	r := NewRegistry()
	ctx := NewContext("customer", "", "u1", 0, nil)

	r.OnWhere("customer", "filter", 10, appendWhere("old"))
	// A module reload re-registers under the same name. The clause must
	// not be applied twice.
	r.OnWhere("customer", "filter", 10, appendWhere("new"))

	where := r.ApplyWhere(ctx, nil)
	if len(where) != 1 || where[0].Expr != "new" {
		t.Errorf("expected single replaced clause, got %v", where)
	}
}

func TestMutatorsScopedToEntity(t *testing.T) {
	r := NewRegistry()

	r.OnWhere("customer", "filter", 10, appendWhere("a"))

	other := NewContext("invoice", "", "u1", 0, nil)
	if where := r.ApplyWhere(other, nil); len(where) != 0 {
		t.Errorf("mutator leaked across entities: %v", where)
	}
}

func TestApplyColumnsAndGroupBy(t *testing.T) {
	r := NewRegistry()
	ctx := NewContext("customer", "", "u1", 0, nil)

	r.OnColumns("customer", "extra-col", 10,
		func(_ Context, cols []entity.Column) []entity.Column {
			return append(cols, entity.Column{Expr: "b.name", Alias: "branch_name"})
		})
	r.OnGroupBy("customer", "group", 10,
		func(_ Context, _ string) string { return "c.id" })

	cols := r.ApplyColumns(ctx, []entity.Column{{Expr: "c.id", Alias: "id"}})
	if len(cols) != 2 || cols[1].Alias != "branch_name" {
		t.Errorf("unexpected columns: %v", cols)
	}
	if got := r.ApplyGroupBy(ctx, ""); got != "c.id" {
		t.Errorf("unexpected group by: %q", got)
	}
}

func TestApplyRowFormat(t *testing.T) {
	r := NewRegistry()
	ctx := NewContext("customer", "", "u1", 0, nil)

	r.OnRowFormat("customer", "mask", 10,
		func(_ Context, row map[string]any) map[string]any {
			row["city"] = "****"
			return row
		})

	row := r.ApplyRowFormat(ctx, map[string]any{"city": "Kaunas"})
	if row["city"] != "****" {
		t.Errorf("row formatter not applied: %v", row)
	}
}

func TestContextIsolation(t *testing.T) {
	extra := map[string]string{"status_filter": "active"}
	ctx := NewContext("customer", "acme", "u1", 3, extra)

	// Mutating the source map after construction must not be visible.
	extra["status_filter"] = "expired"

	if v, ok := ctx.Extra("status_filter"); !ok || v != "active" {
		t.Errorf("context extra not isolated: %q %v", v, ok)
	}
	if ctx.Entity() != "customer" || ctx.Search() != "acme" || ctx.IdentityID() != "u1" || ctx.InstanceID() != 3 {
		t.Errorf("unexpected context accessors")
	}
}
