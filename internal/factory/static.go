package factory

import (
	"go/types"
)

// ResolveStatic finds the factory member of named during discovery.
// provider is the provider type found in the loaded packages, or nil when
// none was found; in that case provider methods never qualify. A parameter
// qualifies when the provider is assignable to it.
func (r Resolver) ResolveStatic(named *types.Named, provider types.Type) (Member, bool) {
	if named == nil {
		return Member{}, false
	}
	if _, isIface := named.Underlying().(*types.Interface); isIface {
		return Member{}, false
	}

	var matches []Member
	mset := types.NewMethodSet(named)
	for i := 0; i < mset.Len(); i++ {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}
		sig, ok := fn.Type().(*types.Signature)
		if !ok || sig.Variadic() || sig.Results().Len() != 1 {
			continue
		}
		if !r.isThemeStatic(sig.Results().At(0).Type()) {
			continue
		}

		switch sig.Params().Len() {
		case 0:
			matches = append(matches, Member{Kind: KindMethod, Name: fn.Name(), Index: i})
		case 1:
			if provider != nil && types.AssignableTo(provider, sig.Params().At(0).Type()) {
				matches = append(matches, Member{Kind: KindProviderMethod, Name: fn.Name(), Index: i})
			}
		}
	}

	return unique(matches)
}

// isThemeStatic compares by full name rather than identity: the theme type
// may come from a different load of the same package.
func (r Resolver) isThemeStatic(t types.Type) bool {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	return StaticTypeName(t) == r.ThemeType
}

// StaticTypeName returns "import/path.Name" for named types and "" otherwise.
func StaticTypeName(t types.Type) string {
	named, ok := t.(*types.Named)
	if !ok {
		return ""
	}
	obj := named.Obj()
	if obj == nil || obj.Pkg() == nil {
		return ""
	}
	return obj.Pkg().Path() + "." + obj.Name()
}
