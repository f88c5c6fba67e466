// Package naming derives the logical image name used to address an image in the
// chart values, both from the location of a template file and from the text of
// the image field being rewritten.
package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Path segments that introduce the owning chart or template directory.
// They are searched in this order.
const (
	ChartsSegment    = "charts"
	TemplatesSegment = "templates"
)

var anchorSegments = []string{ChartsSegment, TemplatesSegment}

// ErrPathDerivation is the sentinel wrapped by PathDerivationError.
var ErrPathDerivation = errors.New("cannot derive logical image name from path")

// PathDerivationError reports a template path that does not follow the
// charts/<name>/... or templates/<name>/... layout.
type PathDerivationError struct {
	Path string
	// Segment is the anchor that was found without a following name, empty if
	// neither anchor is present.
	Segment string
}

func (e *PathDerivationError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("%s %q: nothing follows the %q segment", ErrPathDerivation, e.Path, e.Segment)
	}
	return fmt.Sprintf("%s %q: no %q or %q segment", ErrPathDerivation, e.Path, ChartsSegment, TemplatesSegment)
}

func (e *PathDerivationError) Unwrap() error {
	return ErrPathDerivation
}

// FromPath returns the camelCase name of the directory that follows the first
// "charts" segment of path, or failing that the first "templates" segment.
func FromPath(path string) (string, error) {
	segments := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	for _, anchor := range anchorSegments {
		i := slices.Index(segments, anchor)
		if i < 0 {
			continue
		}
		if i+1 >= len(segments) || segments[i+1] == "" {
			return "", &PathDerivationError{Path: path, Segment: anchor}
		}
		return CamelCase(segments[i+1]), nil
	}
	return "", &PathDerivationError{Path: path}
}

// CamelCase converts a kebab-case name to camelCase: each hyphen separated word
// has its first character uppercased and the rest lowercased, and the first
// character of the result is lowercased.
//
//	CamelCase("cluster-bootstrap-controller") == "clusterBootstrapController"
//	CamelCase("cluster-2fa") == "cluster2fa"
func CamelCase(s string) string {
	lower := cases.Lower(language.Und)

	var b strings.Builder
	for _, word := range strings.Split(s, "-") {
		if word == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(lower.String(word[size:]))
	}

	out := b.String()
	if out == "" {
		return out
	}
	r, size := utf8.DecodeRuneInString(out)
	return string(unicode.ToLower(r)) + out[size:]
}
