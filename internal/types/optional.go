package types

import (
	"bytes"
	"encoding/json"
)

// Optional is a JSON field that remembers whether it was present in the
// decoded document at all.
//
//	{}              → Set=false
//	{"age": null}   → Set=true, Null=true
//	{"age": 21}     → Set=true, Value=21
//
// encoding/json only calls UnmarshalJSON for keys that exist in the input
// (including when the value is null), so the zero Optional means "absent".
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}

	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns a pointer to the value when it was sent with a non-null
// value, nil otherwise.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}
