// Package manifest edits Helm template source text. Template text embeds Go
// template actions that no YAML parser accepts, so documents are handled as
// text and edited with anchored patterns; they are never converted to
// configuration data.
package manifest

import (
	"regexp"
	"strings"
)

// Separator splits a multi-document template file. Splitting and joining on it
// reproduces the original file byte for byte.
const Separator = "\n---\n"

var deploymentKindPattern = regexp.MustCompile(`kind:[ \t]*Deployment\b`)

// Document is the raw text of one manifest in a template file.
type Document string

// Split breaks a template file into its documents.
func Split(content string) []Document {
	parts := strings.Split(content, Separator)
	docs := make([]Document, len(parts))
	for i, p := range parts {
		docs[i] = Document(p)
	}
	return docs
}

// Join is the inverse of Split.
func Join(docs []Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = string(d)
	}
	return strings.Join(parts, Separator)
}

// IsDeployment reports whether the document declares kind Deployment anywhere in its text.
func (d Document) IsDeployment() bool {
	return deploymentKindPattern.MatchString(string(d))
}
