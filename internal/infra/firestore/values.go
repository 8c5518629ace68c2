package firestore

import (
	"strconv"
	"strings"
	"time"
)

// Firestore's REST API types every field. These helpers translate between
// the wire representation and plain Go values so the per-collection stores
// can stay readable.

type value struct {
	StringValue    *string  `json:"stringValue,omitempty"`
	DoubleValue    *float64 `json:"doubleValue,omitempty"`
	IntegerValue   *string  `json:"integerValue,omitempty"` // int64 as decimal string
	BooleanValue   *bool    `json:"booleanValue,omitempty"`
	TimestampValue *string  `json:"timestampValue,omitempty"` // RFC3339
	NullValue      *string  `json:"nullValue,omitempty"`      // "NULL_VALUE"
}

type document struct {
	Name   string           `json:"name,omitempty"`
	Fields map[string]value `json:"fields,omitempty"`
}

func strVal(s string) value     { return value{StringValue: &s} }
func doubleVal(f float64) value { return value{DoubleValue: &f} }
func boolVal(b bool) value      { return value{BooleanValue: &b} }

func intVal(i int) value {
	s := strconv.Itoa(i)
	return value{IntegerValue: &s}
}

func timeVal(t time.Time) value {
	s := t.UTC().Format(time.RFC3339Nano)
	return value{TimestampValue: &s}
}

// id returns the last path segment of the document resource name.
func (d *document) id() string {
	idx := strings.LastIndex(d.Name, "/")
	if idx < 0 {
		return d.Name
	}
	return d.Name[idx+1:]
}

func (d *document) str(field string) string {
	if v, ok := d.Fields[field]; ok && v.StringValue != nil {
		return *v.StringValue
	}
	return ""
}

func (d *document) num(field string) float64 {
	v, ok := d.Fields[field]
	if !ok {
		return 0
	}
	if v.DoubleValue != nil {
		return *v.DoubleValue
	}
	// Whole amounts written by other clients arrive as integerValue.
	if v.IntegerValue != nil {
		if f, err := strconv.ParseFloat(*v.IntegerValue, 64); err == nil {
			return f
		}
	}
	return 0
}

func (d *document) integer(field string) int {
	v, ok := d.Fields[field]
	if !ok {
		return 0
	}
	if v.IntegerValue != nil {
		if i, err := strconv.Atoi(*v.IntegerValue); err == nil {
			return i
		}
	}
	if v.DoubleValue != nil {
		return int(*v.DoubleValue)
	}
	return 0
}

func (d *document) boolean(field string) bool {
	if v, ok := d.Fields[field]; ok && v.BooleanValue != nil {
		return *v.BooleanValue
	}
	return false
}

func (d *document) timestamp(field string) time.Time {
	if v, ok := d.Fields[field]; ok && v.TimestampValue != nil {
		if t, err := time.Parse(time.RFC3339Nano, *v.TimestampValue); err == nil {
			return t
		}
	}
	return time.Time{}
}
