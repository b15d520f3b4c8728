// Package names compares file and group names that may have been stored in
// different Unicode normalization forms. macOS writes decomposed (NFD) Hangul
// file names while most editors and config files carry composed (NFC) text, so
// a byte-wise comparison of the same visible name can fail.
package names

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Variants returns the canonical normalization forms of s (NFC and NFD).
// When both forms agree a single variant is returned. The empty string
// normalizes to itself.
func Variants(s string) []string {
	nfc := norm.NFC.String(s)
	nfd := norm.NFD.String(s)
	if nfc == nfd {
		return []string{nfc}
	}
	return []string{nfc, nfd}
}

// Equal reports whether a and b denote the same name under any combination of
// normalization forms.
func Equal(a, b string) bool {
	for _, av := range Variants(a) {
		for _, bv := range Variants(b) {
			if av == bv {
				return true
			}
		}
	}
	return false
}

// Contains reports whether keyword appears as a substring of name under any
// combination of normalization forms.
func Contains(name, keyword string) bool {
	for _, nv := range Variants(name) {
		for _, kv := range Variants(keyword) {
			if strings.Contains(nv, kv) {
				return true
			}
		}
	}
	return false
}

// Fold lowercases and NFC-normalizes s for loose header matching.
func Fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}
