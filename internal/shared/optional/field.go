package optional

import (
	"database/sql/driver"
	"encoding/json"
)

// Field distinguishes an absent JSON key from an explicit null.
//
//	{}              -> Set=false
//	{"x": null}     -> Set=true, Val=nil
//	{"x": "value"}  -> Set=true, Val=&"value"
type Field[T any] struct {
	Set bool
	Val *T
}

// Of returns a Field set to v
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Val: &v}
}

// Null returns a Field explicitly set to null
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Val = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Val = &v
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Val == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Val)
}

// Value exposes the underlying value to validators; nil when unset or null.
func (f Field[T]) Value() (driver.Value, error) {
	if f.Val == nil {
		return nil, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(*f.Val)
}

// Apply overwrites *dst when the field was supplied
func (f Field[T]) Apply(dst **T) {
	if f.Set {
		*dst = f.Val
	}
}

// ApplyValue overwrites *dst when the field was supplied with a non-null value
func (f Field[T]) ApplyValue(dst *T) {
	if f.Set && f.Val != nil {
		*dst = *f.Val
	}
}
