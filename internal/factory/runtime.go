package factory

import (
	"fmt"
	"reflect"
)

// Resolve finds the factory member of t in a loaded module. It repeats the
// discovery checks because the module may have been rebuilt since the
// manifest was generated; a provider parameter must be exactly the provider
// type.
func (r Resolver) Resolve(t reflect.Type) (Member, bool) {
	if t == nil || t.Kind() == reflect.Interface {
		return Member{}, false
	}

	var matches []Member
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		ft := m.Type // receiver is In(0)
		if !m.IsExported() || ft.IsVariadic() || ft.NumOut() != 1 || !r.isTheme(ft.Out(0)) {
			continue
		}

		switch ft.NumIn() {
		case 1:
			matches = append(matches, Member{Kind: KindMethod, Name: m.Name, Index: i})
		case 2:
			if TypeName(ft.In(1)) == r.ProviderType {
				matches = append(matches, Member{Kind: KindProviderMethod, Name: m.Name, Index: i})
			}
		}
	}

	return unique(matches)
}

// Invoke produces a theme from member m of t using a fresh zero value of t.
// provider is passed to provider methods. A nil pointer, interface or map
// result is returned as nil. Panics raised by the factory are returned as
// errors.
func Invoke(t reflect.Type, m Member, provider any) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("theme factory %s.%s panicked: %v", TypeName(t), m.Name, p)
		}
	}()

	recv := reflect.New(t).Elem()

	var out reflect.Value
	switch m.Kind {
	case KindMethod:
		out = recv.Method(m.Index).Call(nil)[0]
	case KindProviderMethod:
		fn := recv.Method(m.Index)
		param := fn.Type().In(0)
		arg := reflect.Zero(param)
		if provider != nil {
			pv := reflect.ValueOf(provider)
			if !pv.Type().AssignableTo(param) {
				return nil, fmt.Errorf("provider %T is not assignable to %s", provider, param)
			}
			arg = pv
		}
		out = fn.Call([]reflect.Value{arg})[0]
	default:
		return nil, fmt.Errorf("unknown factory member kind %d", m.Kind)
	}

	switch out.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map:
		if out.IsNil() {
			return nil, nil
		}
	}
	return out.Interface(), nil
}

func (r Resolver) isTheme(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return TypeName(t) == r.ThemeType
}

// TypeName returns "import/path.Name" for named types and "" otherwise.
func TypeName(t reflect.Type) string {
	if t == nil || t.Name() == "" {
		return ""
	}
	return t.PkgPath() + "." + t.Name()
}
