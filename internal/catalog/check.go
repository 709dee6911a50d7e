package catalog

import (
	"fmt"
	"sort"
	"time"
)

// Violation is a row value that does not match its table's declared columns
type Violation struct {
	Table  string `json:"table"`
	Row    int    `json:"row"`
	Column string `json:"column"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s[%d].%s: %s", v.Table, v.Row, v.Column, v.Reason)
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, time.DateTime}

// Check reports row values that do not conform to the declared columns.
// Lookups never consult it: rows are served as stored.
func Check(tables []TableDescriptor, rows map[string][]Row) []Violation {
	var out []Violation

	for _, t := range tables {
		for i, r := range rows[t.Name] {
			keys := make([]string, 0, len(r))
			for k := range r {
				keys = append(keys, k)
			}

			sort.Strings(keys)

			for _, k := range keys {
				col, ok := t.Column(k)
				if !ok {
					out = append(out, Violation{Table: t.Name, Row: i, Column: k, Reason: "undeclared column"})
					continue
				}

				if reason := checkValue(col.DataType, r[k]); reason != "" {
					out = append(out, Violation{Table: t.Name, Row: i, Column: k, Reason: reason})
				}
			}
		}
	}

	return out
}

func checkValue(t DataType, v any) string {
	if v == nil {
		return ""
	}

	switch t {
	case TypeNumber:
		if !isNumber(v) {
			return fmt.Sprintf("expected number, got %T", v)
		}
	case TypeString, TypeEnum:
		if _, ok := v.(string); !ok {
			return fmt.Sprintf("expected text, got %T", v)
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Sprintf("expected boolean, got %T", v)
		}
	case TypeDate:
		switch d := v.(type) {
		case time.Time:
		case string:
			if !isDate(d) {
				return fmt.Sprintf("expected ISO-8601 date, got %q", d)
			}
		default:
			return fmt.Sprintf("expected date, got %T", v)
		}
	default:
		return fmt.Sprintf("unknown data type %q", t)
	}

	return ""
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

func isDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}

	return false
}
