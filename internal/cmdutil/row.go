package cmdutil

import (
	"reflect"
	"strings"
)

// Row flattens the exported fields of a struct into a datastore row. Columns
// are named by the json tag, falling back to the lower-cased field name.
// Nil pointers map to nil and other pointers are dereferenced.
func Row(value any) map[string]any {
	row := make(map[string]any)

	v := reflect.Indirect(reflect.ValueOf(value))
	if v.Kind() != reflect.Struct {
		return row
	}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				row[name] = nil
				continue
			}
			fv = fv.Elem()
		}
		row[name] = fv.Interface()
	}
	return row
}
