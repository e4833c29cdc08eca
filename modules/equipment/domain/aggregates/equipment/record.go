package equipment

import (
	"encoding/json"
	"strings"
)

// Record is a partial equipment record: only the fields that were set are present.
// An absent field and a field set to "" compare equal when diffing.
type Record struct {
	values map[Field]string
}

func NewRecord() Record {
	return Record{values: make(map[Field]string)}
}

// RecordOf builds a record from field/value pairs.
func RecordOf(pairs map[Field]string) Record {
	r := NewRecord()
	for f, v := range pairs {
		r.Set(f, v)
	}
	return r
}

func (r *Record) Set(f Field, v string) {
	if !f.Valid() {
		return
	}
	if r.values == nil {
		r.values = make(map[Field]string)
	}
	r.values[f] = strings.TrimSpace(v)
}

func (r Record) Get(f Field) (string, bool) {
	v, ok := r.values[f]
	return v, ok
}

// Value returns the field value, "" when absent.
func (r Record) Value(f Field) string {
	return r.values[f]
}

func (r Record) Has(f Field) bool {
	_, ok := r.values[f]
	return ok
}

func (r *Record) Delete(f Field) {
	delete(r.values, f)
}

func (r Record) Len() int {
	return len(r.values)
}

func (r Record) Serial() string {
	return r.Value(FieldSerial)
}

// Fields returns the present fields in declaration order.
func (r Record) Fields() []Field {
	out := make([]Field, 0, len(r.values))
	for _, f := range AllFields() {
		if _, ok := r.values[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func (r Record) Clone() Record {
	c := Record{values: make(map[Field]string, len(r.values))}
	for f, v := range r.values {
		c.values[f] = v
	}
	return c
}

// Overlay copies every field present on other into r. Fields absent from other are left untouched.
func (r *Record) Overlay(other Record) {
	for f, v := range other.values {
		r.Set(f, v)
	}
}

// Map returns the record keyed by canonical field name.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for f, v := range r.values {
		out[f.Name()] = v
	}
	return out
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// UnmarshalJSON ignores unknown field names.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = NewRecord()
	for name, v := range raw {
		f, ok := ParseField(name)
		if !ok {
			continue
		}
		if v == nil {
			r.Set(f, "")
			continue
		}
		r.Set(f, *v)
	}
	return nil
}
