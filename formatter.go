package datagrid

import (
	"strconv"

	"github.com/xraph/datagrid/entity"
)

// Status literals exposed under StatusKey.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// formatRow turns a raw result row into a response row: nil values become
// the placeholder, the row identity keys are attached, the status badge is
// derived from the entity's active column, and the caller's permitted
// actions are attached. Formatting is pure: the same raw row, relation, and
// capabilities always produce the same output.
func (e *Engine) formatRow(d *entity.Descriptor, ident Identity, rel Relation, raw map[string]any) Row {
	row := make(Row, len(raw)+4)
	for k, v := range raw {
		if v == nil {
			row[k] = Placeholder
			continue
		}
		row[k] = v
	}

	rowID, _ := asInt64(raw[d.IndexColumn])
	row[RowIDKey] = d.Name + "-" + strconv.FormatInt(rowID, 10)
	row[RowDataKey] = RowData{ID: rowID, Entity: d.Name}

	if d.ActiveColumn != "" {
		if asString(raw[d.ActiveColumn]) == d.ActiveValue {
			row[StatusKey] = StatusActive
		} else {
			row[StatusKey] = StatusInactive
		}
	}

	row[ActionsKey] = e.policy.actionsFor(rel, ident.Capabilities)
	return row
}

// asInt64 coerces the scanned primary key to int64. Drivers disagree on the
// concrete type they hand back for integer columns.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		return parsed, err == nil
	case []byte:
		parsed, err := strconv.ParseInt(string(n), 10, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

// asString coerces a scanned column value to its string form for status and
// scope comparisons.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return ""
	}
}
