// Package parser extracts a Purchase Order token from OCR text.
package parser

import "regexp"

// A PO token is zero or more uppercase letters, the literal "PO", and one
// or more digits, e.g. PO904821 or APO1023. Case-sensitive.
var tokenRe = regexp.MustCompile(`[A-Z]*PO[0-9]+`)

// FindToken returns the leftmost PO token in text, or ok=false when the
// text contains none. No normalization is applied.
func FindToken(text string) (token string, ok bool) {
	m := tokenRe.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}
