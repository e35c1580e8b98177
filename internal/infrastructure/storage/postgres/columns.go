package postgres

import (
	"reflect"
)

// ExtractDBColumns returns the "db" tag of every field of T in declaration
// order, descending into embedded structs. Fields tagged "-" or untagged are
// skipped.
//
// Repositories call it once at package init, so the reflection cost is paid
// a single time:
//
//	var formatColumns = ExtractDBColumns[numbering.FormatSetting]()
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOf(field.Type)...)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}
