package catalog

import (
	"iter"

	"google.golang.org/protobuf/types/known/structpb"
)

// Record is a loosely-typed parsed row. The builder only needs named-field
// lookup; a field that is missing or nil is treated as absent.
type Record interface {
	Lookup(field string) (any, bool)
}

// Rows is the sequence of records handed to BuildContext. A nil Rows cannot
// be iterated.
type Rows iter.Seq[Record]

// FromSlice adapts a slice of records. A nil slice is an empty sequence, not
// an invalid one.
func FromSlice[R Record](records []R) Rows {
	return func(yield func(Record) bool) {
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}
}

// Row is a Record backed by a plain map, the shape spreadsheet parsers
// usually produce.
type Row map[string]any

func (r Row) Lookup(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// StructRecord adapts a protobuf Struct. JSON catalogs decode into these, so
// numbers, booleans and nulls keep their JSON types.
type StructRecord struct {
	*structpb.Struct
}

func (r StructRecord) Lookup(field string) (any, bool) {
	if r.Struct == nil {
		return nil, false
	}
	v, ok := r.Struct.GetFields()[field]
	if !ok {
		return nil, false
	}
	return v.AsInterface(), true
}
