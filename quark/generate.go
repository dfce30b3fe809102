package quark

import (
	"reflect"
	"strings"
)

// declaration is one "property: value" pair of a rule.
type declaration struct {
	property string
	value    string
}

// GenerateComponentCSS renders the component rules of theme. Options that
// are nil or empty produce no output; declarations whose value would escape
// the rule are dropped.
func GenerateComponentCSS(theme *Theme) string {
	if theme == nil {
		return ""
	}

	var rules []string

	if a := theme.Anchors; a != nil {
		rules = appendRule(rules, selectorOr(a.Selector, "a"),
			declaration{"color", a.TextColor},
			declaration{"text-decoration", a.TextDecoration},
		)
	}

	if b := theme.Buttons; b != nil {
		rules = appendRule(rules, selectorOr(b.Selector, ".q-btn"),
			declaration{"background-color", b.BackgroundColor},
			declaration{"color", b.TextColor},
			declaration{"border-radius", b.BorderRadius},
			declaration{"padding", b.Padding},
		)
	}

	if c := theme.Cards; c != nil {
		rules = appendRule(rules, selectorOr(c.Selector, ".q-card"),
			declaration{"background-color", c.BackgroundColor},
			declaration{"border-radius", c.BorderRadius},
			declaration{"box-shadow", c.BoxShadow},
		)
	}

	return strings.Join(rules, "\n\n")
}

// GenerateVariablesCSS renders vars as a :root block of custom properties,
// in field declaration order.
func GenerateVariablesCSS(vars *BootstrapCSSVariables) string {
	if vars == nil || vars.Colors == nil {
		return ""
	}

	prefix := strings.TrimSpace(vars.Prefix)
	if prefix == "" {
		prefix = "bs"
	}
	if !isIdent(prefix) {
		return ""
	}

	v := reflect.ValueOf(*vars.Colors)
	t := v.Type()

	decls := make([]declaration, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("css")
		if name == "" {
			continue
		}
		decls = append(decls, declaration{
			property: "--" + prefix + "-" + name,
			value:    v.Field(i).String(),
		})
	}

	return strings.Join(appendRule(nil, ":root", decls...), "")
}

func appendRule(rules []string, selector string, decls ...declaration) []string {
	if !isSafeSelector(selector) {
		return rules
	}

	var body strings.Builder
	for _, d := range decls {
		value, ok := sanitizeValue(d.value)
		if !ok {
			continue
		}
		body.WriteString("  ")
		body.WriteString(d.property)
		body.WriteString(": ")
		body.WriteString(value)
		body.WriteString(";\n")
	}
	if body.Len() == 0 {
		return rules
	}

	return append(rules, selector+" {\n"+body.String()+"}")
}

func selectorOr(selector, fallback string) string {
	if s := strings.TrimSpace(selector); s != "" {
		return s
	}
	return fallback
}
