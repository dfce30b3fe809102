package quark

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// sanitizeValue returns the trimmed value when it is a single well-formed
// declaration value: no statement or block delimiters and balanced
// parentheses.
func sanitizeValue(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	depth := 0
	ok := lexAll(value, func(tt css.TokenType) bool {
		switch tt {
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			depth--
			if depth < 0 {
				return false
			}
		case css.SemicolonToken, css.LeftBraceToken, css.RightBraceToken,
			css.AtKeywordToken, css.BadStringToken, css.BadURLToken,
			css.CDOToken, css.CDCToken:
			return false
		}
		return true
	})

	return value, ok && depth == 0
}

// isSafeSelector reports whether selector can open a rule without closing
// or starting another one.
func isSafeSelector(selector string) bool {
	if strings.TrimSpace(selector) == "" {
		return false
	}
	return lexAll(selector, func(tt css.TokenType) bool {
		switch tt {
		case css.SemicolonToken, css.LeftBraceToken, css.RightBraceToken,
			css.AtKeywordToken, css.BadStringToken, css.CDOToken, css.CDCToken:
			return false
		}
		return true
	})
}

// isIdent reports whether s is exactly one CSS identifier.
func isIdent(s string) bool {
	count := 0
	ok := lexAll(s, func(tt css.TokenType) bool {
		count++
		return tt == css.IdentToken
	})
	return ok && count == 1
}

// lexAll feeds every token of s to accept and stops at the first rejected
// token. It returns false on rejection or on a lexer error other than EOF.
func lexAll(s string, accept func(css.TokenType) bool) bool {
	lexer := css.NewLexer(parse.NewInputString(s))
	for {
		tt, _ := lexer.Next()
		if tt == css.ErrorToken {
			return lexer.Err() == io.EOF
		}
		if !accept(tt) {
			return false
		}
	}
}
