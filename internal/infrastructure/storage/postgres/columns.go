package postgres

import (
	"reflect"
	"sync"
)

// Columns lists the "db" tags of T, descending into embedded structs such as
// entity.BaseEntity. Repositories call it once at construction.
func Columns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	fields := fieldsOf(t)
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, f.column)
	}
	return cols
}

type taggedField struct {
	index  []int
	column string
}

var fieldCache sync.Map // reflect.Type -> []taggedField

func fieldsOf(t reflect.Type) []taggedField {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]taggedField)
	}
	var out []taggedField
	if t.Kind() == reflect.Struct {
		collectFields(t, nil, &out)
	}
	fieldCache.Store(t, out)
	return out
}

func collectFields(t reflect.Type, prefix []int, out *[]taggedField) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := append(append([]int(nil), prefix...), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectFields(f.Type, index, out)
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		*out = append(*out, taggedField{index: index, column: tag})
	}
}

// ToMap returns column -> value for every "db"-tagged field of v.
func ToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	fields := fieldsOf(rv.Type())
	res := make(map[string]any, len(fields))
	for _, f := range fields {
		res[f.column] = rv.FieldByIndex(f.index).Interface()
	}
	return res
}
