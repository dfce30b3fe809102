// Package factory finds the single member of a theme-declaring type that
// produces a theme.
//
// A qualifying member is an exported value-receiver method returning the
// theme type (or a pointer to it) that takes either no parameters or exactly
// one parameter accepting the provider. Methods are called on a fresh zero
// value of the declaring type, so struct fields never qualify.
//
// Exactly one match resolves; zero and several are both reported as
// "no unique factory".
package factory

import (
	"github.com/yacobolo/themecss/quark"
)

// Kind is the shape of a factory member.
type Kind int

const (
	// KindMethod is a method called without arguments.
	KindMethod Kind = iota
	// KindProviderMethod is a method called with the provider.
	KindProviderMethod
)

func (k Kind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindProviderMethod:
		return "provider method"
	}
	return "unknown"
}

// Member identifies the resolved factory member of a type.
type Member struct {
	Kind  Kind
	Name  string
	Index int // method index in the value method set
}

// Resolver matches members against the full names of the theme and
// provider types.
type Resolver struct {
	ThemeType    string // "github.com/yacobolo/themecss/quark.Theme"
	ProviderType string // "github.com/yacobolo/themecss/quark.Provider"
}

// Default matches the quark theming library.
var Default = Resolver{
	ThemeType:    quark.ThemeTypeName,
	ProviderType: quark.ProviderTypeName,
}

// unique returns the only element of matches.
func unique(matches []Member) (Member, bool) {
	if len(matches) != 1 {
		return Member{}, false
	}
	return matches[0], true
}
