// Package cssmin is the default CSS minifier used for ".min.css" outputs.
package cssmin

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
)

const mediaType = "text/css"

// Minifier minifies stylesheets.
type Minifier struct {
	m *minify.M
}

// New returns a CSS minifier.
func New() *Minifier {
	m := minify.New()
	m.AddFunc(mediaType, css.Minify)
	return &Minifier{m: m}
}

// Minify returns the minified form of src.
func (m *Minifier) Minify(src string) (string, error) {
	out, err := m.m.String(mediaType, src)
	if err != nil {
		return "", fmt.Errorf("minify css: %w", err)
	}
	return out, nil
}

var std = New()

// Minify minifies src with the package-level minifier.
func Minify(src string) (string, error) {
	return std.Minify(src)
}
