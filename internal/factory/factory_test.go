package factory

import (
	"go/types"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/themecss/internal/srctest"
	"github.com/yacobolo/themecss/quark"
)

type mapProvider map[string]any

func (m mapProvider) Service(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

type buildTheme struct{}

func (buildTheme) Build() *quark.Theme { return &quark.Theme{Name: "built"} }
func (buildTheme) Describe() string    { return "not a factory" }

type providerTheme struct{}

func (providerTheme) Build(p quark.Provider) *quark.Theme {
	name := "no provider"
	if p != nil {
		if v, ok := p.Service("name"); ok {
			name = v.(string)
		}
	}
	return &quark.Theme{Name: name}
}

type valueTheme struct{}

func (valueTheme) Theme() quark.Theme { return quark.Theme{Name: "value"} }

type nilFieldTheme struct {
	Theme *quark.Theme
	Label string
}

type zeroFieldTheme struct {
	Theme quark.Theme
}

type fieldAndMethodTheme struct {
	Theme *quark.Theme
}

func (fieldAndMethodTheme) Build() *quark.Theme { return &quark.Theme{Name: "method"} }

type twoMethodsTheme struct{}

func (twoMethodsTheme) Light() *quark.Theme { return nil }
func (twoMethodsTheme) Dark() *quark.Theme  { return nil }

type noFactoryTheme struct{}

func (noFactoryTheme) Build() string { return "" }

type anyParamTheme struct{}

func (anyParamTheme) Build(any) *quark.Theme { return nil }

type pointerReceiverTheme struct{}

func (*pointerReceiverTheme) Build() *quark.Theme { return &quark.Theme{} }

type tooManyParamsTheme struct{}

func (tooManyParamsTheme) Build(quark.Provider, string) *quark.Theme { return nil }

type variadicTheme struct{}

func (variadicTheme) Build(...quark.Provider) *quark.Theme { return nil }

type panickingTheme struct{}

func (panickingTheme) Build() *quark.Theme { panic("boom") }

type nilResultTheme struct{}

func (nilResultTheme) Build() *quark.Theme { return nil }

type embedsTheme struct {
	*quark.Theme
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		typ      reflect.Type
		wantOK   bool
		wantKind Kind
		wantName string
	}{
		{"zero arg method", reflect.TypeOf(buildTheme{}), true, KindMethod, "Build"},
		{"provider method", reflect.TypeOf(providerTheme{}), true, KindProviderMethod, "Build"},
		{"value result", reflect.TypeOf(valueTheme{}), true, KindMethod, "Theme"},
		{"pointer field is not a factory", reflect.TypeOf(nilFieldTheme{}), false, 0, ""},
		{"value field is not a factory", reflect.TypeOf(zeroFieldTheme{}), false, 0, ""},
		{"fields do not make a method ambiguous", reflect.TypeOf(fieldAndMethodTheme{}), true, KindMethod, "Build"},
		{"two methods are ambiguous", reflect.TypeOf(twoMethodsTheme{}), false, 0, ""},
		{"no factory", reflect.TypeOf(noFactoryTheme{}), false, 0, ""},
		{"parameter must equal provider", reflect.TypeOf(anyParamTheme{}), false, 0, ""},
		{"pointer receiver is not static", reflect.TypeOf(pointerReceiverTheme{}), false, 0, ""},
		{"two parameters", reflect.TypeOf(tooManyParamsTheme{}), false, 0, ""},
		{"variadic", reflect.TypeOf(variadicTheme{}), false, 0, ""},
		{"embedded theme is not a field factory", reflect.TypeOf(embedsTheme{}), false, 0, ""},
		{"interface", reflect.TypeOf((*quark.Provider)(nil)).Elem(), false, 0, ""},
		{"nil type", nil, false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Default.Resolve(tt.typ)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKind, m.Kind)
				assert.Equal(t, tt.wantName, m.Name)
			}
		})
	}
}

func TestResolve_ZeroAndManyAreIndistinguishable(t *testing.T) {
	zero, zeroOK := Default.Resolve(reflect.TypeOf(noFactoryTheme{}))
	many, manyOK := Default.Resolve(reflect.TypeOf(twoMethodsTheme{}))

	assert.False(t, zeroOK)
	assert.False(t, manyOK)
	assert.Equal(t, zero, many)
}

func TestInvoke(t *testing.T) {
	typ := reflect.TypeOf(buildTheme{})
	m, ok := Default.Resolve(typ)
	require.True(t, ok)

	v, err := Invoke(typ, m, nil)
	require.NoError(t, err)
	require.IsType(t, &quark.Theme{}, v)
	assert.Equal(t, "built", v.(*quark.Theme).Name)
}

func TestInvoke_Provider(t *testing.T) {
	typ := reflect.TypeOf(providerTheme{})
	m, ok := Default.Resolve(typ)
	require.True(t, ok)

	v, err := Invoke(typ, m, mapProvider{"name": "from provider"})
	require.NoError(t, err)
	assert.Equal(t, "from provider", v.(*quark.Theme).Name)

	v, err = Invoke(typ, m, nil)
	require.NoError(t, err)
	assert.Equal(t, "no provider", v.(*quark.Theme).Name)
}

func TestInvoke_ProviderNotAssignable(t *testing.T) {
	typ := reflect.TypeOf(providerTheme{})
	m, ok := Default.Resolve(typ)
	require.True(t, ok)

	_, err := Invoke(typ, m, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not assignable")
}

func TestInvoke_NilResult(t *testing.T) {
	typ := reflect.TypeOf(nilResultTheme{})
	m, ok := Default.Resolve(typ)
	require.True(t, ok)

	v, err := Invoke(typ, m, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestInvoke_ValueResult(t *testing.T) {
	typ := reflect.TypeOf(valueTheme{})
	m, ok := Default.Resolve(typ)
	require.True(t, ok)

	v, err := Invoke(typ, m, nil)
	require.NoError(t, err)
	assert.Equal(t, quark.Theme{Name: "value"}, v)
}

func TestInvoke_FieldAndMethod(t *testing.T) {
	typ := reflect.TypeOf(fieldAndMethodTheme{})
	m, ok := Default.Resolve(typ)
	require.True(t, ok)

	v, err := Invoke(typ, m, nil)
	require.NoError(t, err)
	assert.Equal(t, "method", v.(*quark.Theme).Name)
}

func TestInvoke_Panic(t *testing.T) {
	typ := reflect.TypeOf(panickingTheme{})
	m, ok := Default.Resolve(typ)
	require.True(t, ok)

	_, err := Invoke(typ, m, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked: boom")
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, quark.ThemeTypeName, TypeName(reflect.TypeOf(quark.Theme{})))
	assert.Equal(t, "", TypeName(reflect.TypeOf(&quark.Theme{})))
	assert.Equal(t, "", TypeName(reflect.TypeOf([]int{})))
}

const staticSource = `package ui

import "github.com/yacobolo/themecss/quark"

type Build struct{}

func (Build) Build() *quark.Theme { return nil }

type WithProvider struct{}

func (WithProvider) Build(p quark.Provider) *quark.Theme { return nil }

type WithAny struct{}

func (WithAny) Build(p any) quark.Theme { return quark.Theme{} }

type Field struct {
	Theme *quark.Theme
}

type FieldAndMethod struct {
	Theme quark.Theme
}

func (FieldAndMethod) Build() *quark.Theme { return nil }

type Ambiguous struct{}

func (Ambiguous) Light() *quark.Theme { return nil }
func (Ambiguous) Dark() *quark.Theme  { return nil }

type Pointer struct{}

func (*Pointer) Build() *quark.Theme { return nil }

type Unexported struct{}

func (Unexported) build() *quark.Theme { return nil }

type WrongParam struct{}

func (WrongParam) Build(s string) *quark.Theme { return nil }

type Multi struct{}

func (Multi) Build() (*quark.Theme, error) { return nil, nil }

type Iface interface {
	Build() *quark.Theme
}
`

func TestResolveStatic(t *testing.T) {
	u := srctest.WithQuark(t)
	pkg := u.Add(t, "example.com/app/ui", map[string]string{"ui.go": staticSource})

	quarkPkg, err := u.Import(srctest.QuarkPath)
	require.NoError(t, err)
	provider := quarkPkg.Scope().Lookup("Provider").Type()

	tests := []struct {
		typeName string
		provider types.Type
		wantOK   bool
		wantKind Kind
	}{
		{"Build", provider, true, KindMethod},
		{"WithProvider", provider, true, KindProviderMethod},
		{"WithProvider", nil, false, 0},
		{"WithAny", provider, true, KindProviderMethod},
		{"Field", provider, false, 0},
		{"FieldAndMethod", provider, true, KindMethod},
		{"Ambiguous", provider, false, 0},
		{"Pointer", provider, false, 0},
		{"Unexported", provider, false, 0},
		{"WrongParam", provider, false, 0},
		{"Multi", provider, false, 0},
		{"Iface", provider, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			named := pkg.Types.Scope().Lookup(tt.typeName).Type().(*types.Named)
			m, ok := Default.ResolveStatic(named, tt.provider)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKind, m.Kind)
			}
		})
	}
}

func TestResolveStatic_Nil(t *testing.T) {
	_, ok := Default.ResolveStatic(nil, nil)
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "method", KindMethod.String())
	assert.Equal(t, "provider method", KindProviderMethod.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
