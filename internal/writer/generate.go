package writer

import (
	"fmt"
	"reflect"
	"strings"
)

// VariablesField is the theme field handed to the variables generator.
const VariablesField = "BootstrapCSSVariables"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// generator is a CSS generator found in a loaded module. Accepted shapes are
// func(T) string and func(T) (string, error).
type generator struct {
	name string
	fn   reflect.Value
}

func newGenerator(name string, v any) (generator, error) {
	fn := reflect.ValueOf(v)
	if fn.Kind() == reflect.Pointer && fn.Elem().Kind() == reflect.Func {
		fn = fn.Elem()
	}
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return generator{}, fmt.Errorf("%s is a %T, not a function", name, v)
	}

	ft := fn.Type()
	if ft.NumIn() != 1 || ft.IsVariadic() {
		return generator{}, fmt.Errorf("%s must take exactly one argument", name)
	}
	switch {
	case ft.NumOut() == 1 && ft.Out(0).Kind() == reflect.String:
	case ft.NumOut() == 2 && ft.Out(0).Kind() == reflect.String && ft.Out(1) == errorType:
	default:
		return generator{}, fmt.Errorf("%s must return string or (string, error)", name)
	}
	return generator{name: name, fn: fn}, nil
}

// call runs the generator on arg. ok is false when arg does not fit the
// parameter type.
func (g generator) call(arg any) (css string, ok bool, err error) {
	in, ok := adapt(reflect.ValueOf(arg), g.fn.Type().In(0))
	if !ok {
		return "", false, nil
	}

	out := g.fn.Call([]reflect.Value{in})
	if len(out) == 2 && !out[1].IsNil() {
		return "", true, fmt.Errorf("%s: %w", g.name, out[1].Interface().(error))
	}
	return out[0].String(), true, nil
}

// adapt converts v to want, taking the address of or dereferencing v where
// that makes it fit.
func adapt(v reflect.Value, want reflect.Type) (reflect.Value, bool) {
	if !v.IsValid() {
		return reflect.Value{}, false
	}
	if v.Type().AssignableTo(want) {
		return v, true
	}
	if v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Type().AssignableTo(want) {
		return v.Elem(), true
	}
	if want.Kind() == reflect.Pointer && v.Type().AssignableTo(want.Elem()) {
		p := reflect.New(want.Elem())
		p.Elem().Set(v)
		return p, true
	}
	return reflect.Value{}, false
}

// variables returns the non-nil variables sub-object of theme, if any.
func variables(theme any) (any, bool) {
	v := reflect.ValueOf(theme)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}

	sf, ok := v.Type().FieldByName(VariablesField)
	if !ok || !sf.IsExported() {
		return nil, false
	}
	f := v.FieldByIndex(sf.Index)
	switch f.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if f.IsNil() {
			return nil, false
		}
	}
	return f.Interface(), true
}

// joinCSS joins the non-blank parts with a blank line.
func joinCSS(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
