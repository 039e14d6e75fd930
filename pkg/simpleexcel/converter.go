package simpleexcel

import (
	"fmt"
	"reflect"
	"time"
)

// TimeFormat is used for time.Time fields.
const TimeFormat = "2006-01-02 15:04:05"

// fieldNames lists the exported non-map field names of a struct type in
// order.
func fieldNames(typ reflect.Type) []string {
	var names []string
	for i := 0; i < typ.NumField(); i++ {
		if f := typ.Field(i); f.IsExported() && f.Type.Kind() != reflect.Map {
			names = append(names, f.Name)
		}
	}
	return names
}

// elements returns the struct values of a slice of structs or struct
// pointers. Nil pointers are skipped.
func elements(data interface{}) ([]reflect.Value, reflect.Type, error) {
	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Slice {
		return nil, nil, fmt.Errorf("expected slice of structs, got %v", val.Kind())
	}

	typ := val.Type().Elem()
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("expected slice of structs, got slice of %v", typ.Kind())
	}

	out := make([]reflect.Value, 0, val.Len())
	for i := 0; i < val.Len(); i++ {
		elem := val.Index(i)
		if elem.Kind() == reflect.Ptr {
			if elem.IsNil() {
				continue
			}
			elem = elem.Elem()
		}
		out = append(out, elem)
	}
	return out, typ, nil
}

// extractValue reads a field by name. Map fields are read as Field_key.
func extractValue(v reflect.Value, name string) interface{} {
	if f := v.FieldByName(name); f.IsValid() {
		if f.Kind() == reflect.Ptr {
			if f.IsNil() {
				return nil
			}
			f = f.Elem()
		}
		if t, ok := f.Interface().(time.Time); ok {
			if t.IsZero() {
				return ""
			}
			return t.Format(TimeFormat)
		}
		return f.Interface()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		prefix := v.Type().Field(i).Name + "_"
		if field.Kind() != reflect.Map || field.IsNil() || len(name) <= len(prefix) || name[:len(prefix)] != prefix {
			continue
		}
		if mv := field.MapIndex(reflect.ValueOf(name[len(prefix):])); mv.IsValid() {
			return mv.Interface()
		}
	}
	return nil
}
