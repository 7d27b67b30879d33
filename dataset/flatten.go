package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidRecord is returned when a record is not a JSON object
	ErrInvalidRecord = errors.New("invalid record")
	// ErrKeyCollision is returned when two fields of a record flatten to the
	// same column name, as in {"a.b": 1, "a": {"b": 2}}.
	ErrKeyCollision = errors.New("key collision")
)

// FromJSON flattens JSON objects into a dataset. Nested keys are joined with
// dots (login.password) and columns appear in first-seen document order.
// A column missing from a record is nil in that row. A record whose fields
// flatten to the same name is rejected.
func FromJSON(records [][]byte) (*Dataset, error) {
	var order []string
	seen := make(map[string]struct{})
	flat := make([]map[string]gjson.Result, len(records))

	for i, record := range records {
		if !gjson.ValidBytes(record) {
			return nil, fmt.Errorf("from json: record %d: %w: malformed json", i, ErrInvalidRecord)
		}
		parsed := gjson.ParseBytes(record)
		if !parsed.IsObject() {
			return nil, fmt.Errorf("from json: record %d: %w: not an object", i, ErrInvalidRecord)
		}

		fields := make(map[string]gjson.Result)
		err := flattenObject("", parsed, fields, func(name string) {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				order = append(order, name)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("from json: record %d: %w: %w", i, ErrInvalidRecord, err)
		}
		flat[i] = fields
	}

	columns := make([]Column, len(order))
	for c, name := range order {
		columns[c] = Column{Name: name, Type: inferType(flat, name)}
	}

	rows := make([][]any, len(flat))
	for i, fields := range flat {
		row := make([]any, len(columns))
		for c, col := range columns {
			v, ok := fields[col.Name]
			if !ok {
				continue
			}
			cell, err := convert(v, col.Type)
			if err != nil {
				return nil, fmt.Errorf("from json: record %d: column %s: %w", i, col.Name, err)
			}
			row[c] = cell
		}
		rows[i] = row
	}

	return New(columns, rows)
}

func flattenObject(prefix string, obj gjson.Result, out map[string]gjson.Result, onKey func(string)) error {
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if prefix != "" {
			name = prefix + "." + name
		}

		if value.IsObject() {
			err = flattenObject(name, value, out, onKey)
			return err == nil
		}

		if _, ok := out[name]; ok {
			err = fmt.Errorf("%w: %s", ErrKeyCollision, name)
			return false
		}
		onKey(name)
		out[name] = value
		return true
	})
	return err
}

func inferType(records []map[string]gjson.Result, name string) SemanticType {
	var inferred SemanticType
	for _, fields := range records {
		v, ok := fields[name]
		if !ok || v.Type == gjson.Null {
			continue
		}

		t := valueType(v)
		switch {
		case inferred == "":
			inferred = t
		case inferred == t:
		case isNumeric(inferred) && isNumeric(t):
			inferred = Float
		default:
			return Text
		}
	}

	if inferred == "" {
		return Text
	}
	return inferred
}

func valueType(v gjson.Result) SemanticType {
	switch v.Type {
	case gjson.Number:
		if _, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return Integer
		}
		return Float
	case gjson.True, gjson.False:
		return Boolean
	case gjson.String:
		if _, err := time.Parse(time.RFC3339Nano, v.Str); err == nil {
			return Timestamp
		}
		return Text
	default:
		return Text
	}
}

func isNumeric(t SemanticType) bool {
	return t == Integer || t == Float
}

func convert(v gjson.Result, typ SemanticType) (any, error) {
	if v.Type == gjson.Null {
		return nil, nil
	}

	switch typ {
	case Integer:
		return v.Int(), nil
	case Float:
		return v.Float(), nil
	case Boolean:
		return v.Bool(), nil
	case Timestamp:
		ts, err := time.Parse(time.RFC3339Nano, v.Str)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		return ts, nil
	default:
		if v.Type == gjson.String {
			return v.Str, nil
		}
		return v.Raw, nil
	}
}
