// Package catalog turns parsed catalog rows and an optional free-text
// supplement into the immutable Payload an agent session is grounded in.
//
// Every row is projected onto the same fixed field set. A row that lacks a
// field keeps the key with the Absent marker; rows are never rejected for
// gaps, and no price or numeric validation happens here.
//
//	payload, err := catalog.BuildContext(catalog.FromSlice(rows), notes)
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Field names one column of the fixed field set.
type Field string

const (
	FieldCategory    Field = "CategoryTitleEn"
	FieldSubcategory Field = "SubcategoryTitleEn"
	FieldName        Field = "ItemNameEn"
	FieldPrice       Field = "ItemPrice"
	FieldCalories    Field = "Calories"
	FieldPortion     Field = "PortionSize"
	FieldDescription Field = "ItemDescriptionEn"
)

var fields = [...]Field{
	FieldCategory,
	FieldSubcategory,
	FieldName,
	FieldPrice,
	FieldCalories,
	FieldPortion,
	FieldDescription,
}

// Fields returns the fixed field set in rendering order.
func Fields() []Field {
	return slices.Clone(fields[:])
}

func fieldIndex(f Field) int {
	return slices.Index(fields[:], f)
}

// Missing is the type of the Absent marker.
type Missing struct{}

func (Missing) String() string { return "<absent>" }

// MarshalJSON renders the marker as null.
func (Missing) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Absent marks a fixed field the source row did not provide.
var Absent = Missing{}

// Item is one record projected onto the fixed field set.
type Item struct {
	values [len(fields)]any
}

// Value returns the field's value, or Absent. Unknown fields are Absent.
func (it Item) Value(f Field) any {
	i := fieldIndex(f)
	if i < 0 {
		return Absent
	}
	return it.values[i]
}

// IsAbsent reports whether the source row lacked the field.
func (it Item) IsAbsent(f Field) bool {
	return it.Value(f) == Absent
}

// Map returns every fixed field keyed by name. Keys are never missing.
func (it Item) Map() map[Field]any {
	m := make(map[Field]any, len(fields))
	for i, f := range fields {
		m[f] = it.values[i]
	}
	return m
}

// MarshalJSON writes the fields in fixed order.
func (it Item) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(string(f))
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(it.values[i])
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", f, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores an item; null and missing keys become Absent.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*it = project(Row(raw))
	return nil
}

func project(r Record) Item {
	var it Item
	for i, f := range fields {
		v, ok := r.Lookup(string(f))
		if !ok || v == nil {
			it.values[i] = Absent
			continue
		}
		it.values[i] = v
	}
	return it
}

// Payload is the bounded context handed to one session. It is never mutated
// after BuildContext returns.
type Payload struct {
	items      []Item
	supplement string
}

// BuildContext projects each record onto the fixed field set and attaches the
// supplement. An empty supplement means "none". It fails only when rows is
// nil or yields a nil record.
func BuildContext(rows Rows, supplement string) (Payload, error) {
	if rows == nil {
		return Payload{}, &InvalidInputError{Row: -1, Reason: "rows cannot be iterated"}
	}

	var items []Item
	index := 0
	for r := range rows {
		if r == nil {
			return Payload{}, &InvalidInputError{Row: index, Reason: "nil record"}
		}
		items = append(items, project(r))
		index++
	}

	return Payload{items: items, supplement: supplement}, nil
}

// Items returns a copy of the projected records.
func (p Payload) Items() []Item {
	return slices.Clone(p.items)
}

// Len returns the number of records.
func (p Payload) Len() int {
	return len(p.items)
}

// Supplement returns the free-text supplement, "" when none was given.
func (p Payload) Supplement() string {
	return p.supplement
}

// ItemsJSON renders the records as an indented JSON array, the form embedded
// in agent instructions.
func (p Payload) ItemsJSON() (string, error) {
	items := p.items
	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render items: %w", err)
	}
	return string(data), nil
}

type payloadDocument struct {
	Items      []Item `json:"items"`
	Supplement string `json:"supplement"`
}

// MarshalJSON serializes the payload for storage.
func (p Payload) MarshalJSON() ([]byte, error) {
	items := p.items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(payloadDocument{Items: items, Supplement: p.supplement})
}

// UnmarshalJSON restores a stored payload.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var doc payloadDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return &InvalidInputError{Row: -1, Reason: "malformed payload document", Err: err}
	}
	*p = Payload{items: doc.Items, supplement: doc.Supplement}
	return nil
}
