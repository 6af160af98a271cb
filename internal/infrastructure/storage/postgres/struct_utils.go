package postgres

import (
	"reflect"
	"sync"
)

// column metadata is derived from "db" struct tags once per type and cached;
// repositories call StructToMap on every insert and update.

type taggedField struct {
	index int
	column string
}

type structSchema struct {
	fields   []taggedField
	embedded []int
}

var schemaCache sync.Map // reflect.Type -> *structSchema

func schemaFor(t reflect.Type) *structSchema {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*structSchema)
	}

	s := &structSchema{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Anonymous {
				s.embedded = append(s.embedded, i)
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			s.fields = append(s.fields, taggedField{index: i, column: tag})
		}
	}

	schemaCache.Store(t, s)
	return s
}

// ExtractDBColumns lists the column names a type maps to, embedded structs
// included. Repositories call it once at construction to build their SELECT
// column list.
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	s := schemaFor(t)
	cols := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		cols = append(cols, f.column)
	}
	for _, i := range s.embedded {
		cols = append(cols, columnsOf(t.Field(i).Type)...)
	}
	return cols
}

// StructToMap converts a struct value into a column-to-value map using its
// "db" tags, for squirrel SetMap inserts and updates.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	s := schemaFor(rv.Type())
	res := make(map[string]any, len(s.fields))

	for _, f := range s.fields {
		res[f.column] = rv.Field(f.index).Interface()
	}
	for _, i := range s.embedded {
		for col, val := range StructToMap(rv.Field(i).Interface()) {
			res[col] = val
		}
	}

	return res
}
