// Package quark is the default theming library consumed by themecss.
//
// A theme is declared in Go code on a named type carrying a themecss
// directive and exactly one factory member:
//
//	//themecss:generate "wwwroot/css/quark-theme.css"
//	type DemoTheme struct{}
//
//	func (DemoTheme) Build() *quark.Theme {
//		return &quark.Theme{Name: "Demo", Buttons: &quark.ButtonOptions{BackgroundColor: "#2563eb"}}
//	}
//
// GenerateComponentCSS and GenerateVariablesCSS turn a Theme into CSS. The
// themecss writer calls them by name through the host module table, so their
// signatures are part of the contract.
package quark

// ModuleName identifies this package as a host-shared module.
const ModuleName = "github.com/yacobolo/themecss/quark"

// Full type names used to match factory members across package boundaries.
const (
	ThemeTypeName    = ModuleName + ".Theme"
	ProviderTypeName = ModuleName + ".Provider"
)

// Symbol names of the CSS generators exported by the host module.
const (
	ComponentGeneratorSymbol = "GenerateComponentCSS"
	VariablesGeneratorSymbol = "GenerateVariablesCSS"
)

// Provider gives theme factories access to services supplied by the
// writer at invocation time.
type Provider interface {
	Service(name string) (any, bool)
}

// Well-known service names offered by the themecss writer.
const (
	ServiceProjectDir = "projectDir"
	ServiceTargetDir  = "targetDir"
	ServiceLogger     = "logger"
)

// Theme is the declarative description of a stylesheet.
type Theme struct {
	Name    string
	Anchors *AnchorOptions
	Buttons *ButtonOptions
	Cards   *CardOptions

	// BootstrapCSSVariables, when set, is rendered as a :root block of
	// --bs-* custom properties.
	BootstrapCSSVariables *BootstrapCSSVariables
}

// AnchorOptions styles links.
type AnchorOptions struct {
	Selector       string // defaults to "a"
	TextDecoration string
	TextColor      string
}

// ButtonOptions styles buttons.
type ButtonOptions struct {
	Selector        string // defaults to ".q-btn"
	BackgroundColor string
	TextColor       string
	BorderRadius    string
	Padding         string
}

// CardOptions styles cards.
type CardOptions struct {
	Selector        string // defaults to ".q-card"
	BackgroundColor string
	BorderRadius    string
	BoxShadow       string
}

// BootstrapCSSVariables groups Bootstrap custom property overrides.
type BootstrapCSSVariables struct {
	Prefix string // defaults to "bs"
	Colors *BootstrapColors
}

// BootstrapColors holds Bootstrap color tokens. The css tag is the custom
// property name without prefix.
type BootstrapColors struct {
	Primary               string `css:"primary"`
	PrimaryRgb            string `css:"primary-rgb"`
	PrimaryTextEmphasis   string `css:"primary-text-emphasis"`
	PrimaryBgSubtle       string `css:"primary-bg-subtle"`
	PrimaryBorderSubtle   string `css:"primary-border-subtle"`
	Secondary             string `css:"secondary"`
	SecondaryRgb          string `css:"secondary-rgb"`
	SecondaryTextEmphasis string `css:"secondary-text-emphasis"`
	SecondaryBgSubtle     string `css:"secondary-bg-subtle"`
	SecondaryBorderSubtle string `css:"secondary-border-subtle"`
	Success               string `css:"success"`
	SuccessRgb            string `css:"success-rgb"`
	SuccessTextEmphasis   string `css:"success-text-emphasis"`
	SuccessBgSubtle       string `css:"success-bg-subtle"`
	SuccessBorderSubtle   string `css:"success-border-subtle"`
	Danger                string `css:"danger"`
	DangerRgb             string `css:"danger-rgb"`
	DangerTextEmphasis    string `css:"danger-text-emphasis"`
	DangerBgSubtle        string `css:"danger-bg-subtle"`
	DangerBorderSubtle    string `css:"danger-border-subtle"`
	Warning               string `css:"warning"`
	WarningRgb            string `css:"warning-rgb"`
	WarningTextEmphasis   string `css:"warning-text-emphasis"`
	WarningBgSubtle       string `css:"warning-bg-subtle"`
	WarningBorderSubtle   string `css:"warning-border-subtle"`
	Info                  string `css:"info"`
	InfoRgb               string `css:"info-rgb"`
	InfoTextEmphasis      string `css:"info-text-emphasis"`
	InfoBgSubtle          string `css:"info-bg-subtle"`
	InfoBorderSubtle      string `css:"info-border-subtle"`
	Dark                  string `css:"dark"`
	Light                 string `css:"light"`
	Gray100               string `css:"gray-100"`
	Gray200               string `css:"gray-200"`
	Gray300               string `css:"gray-300"`
	Gray400               string `css:"gray-400"`
	Gray500               string `css:"gray-500"`
	Gray600               string `css:"gray-600"`
	Gray700               string `css:"gray-700"`
	Gray800               string `css:"gray-800"`
	Gray900               string `css:"gray-900"`
}
