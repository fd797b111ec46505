package pool

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Field is one column of a decoded row.
type Field struct {
	Name  string
	Value any
}

// Record is a decoded row with its columns in select order. It encodes as a
// JSON object whose keys keep that order; a nil Record encodes as null.
type Record []Field

// Get returns the value of the named column.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func rowToRecord(row pgx.CollectableRow) (Record, error) {
	values, err := row.Values()
	if err != nil {
		return nil, err
	}
	fds := row.FieldDescriptions()
	rec := make(Record, len(fds))
	for i, fd := range fds {
		rec[i] = Field{Name: fd.Name, Value: wireValue(fd.DataTypeOID, values[i])}
	}
	return rec, nil
}

// wireValue keeps DATE columns as pgtype.Date so they encode as YYYY-MM-DD,
// the same form request bodies accept. pgx decodes them as time.Time.
func wireValue(oid uint32, v any) any {
	if t, ok := v.(time.Time); ok && oid == pgtype.DateOID {
		return pgtype.Date{Time: t, Valid: true}
	}
	return v
}
