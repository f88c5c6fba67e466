package manifest

import (
	"regexp"
	"strings"
)

// DefaultReleaseLabel is the pod template label tying workloads to the release.
const DefaultReleaseLabel = "azure-extensions-usage-release-identifier"

const releaseNameExpression = "{{ .Release.Name }}"

// podTemplateLabelsPattern matches `template:`, `metadata:` and `labels:` on
// consecutive lines. Group 1 is the indentation of `labels:`.
var podTemplateLabelsPattern = regexp.MustCompile(`(?m)^[ \t]*template:[ \t]*\n[ \t]*metadata:[ \t]*\n([ \t]*)labels:[ \t]*\n`)

// AnnotatePodTemplate inserts `<label>: {{ .Release.Name }}` at the top of each
// pod template labels block, indented like the labels already there. Documents
// without such a block, or already carrying the label, are returned unchanged.
func AnnotatePodTemplate(doc Document, label string) Document {
	if label == "" {
		label = DefaultReleaseLabel
	}
	text := string(doc)
	matches := podTemplateLabelsPattern.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return doc
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		end := m[1]
		labelsIndent := text[m[2]:m[3]]
		indent, present := labelBlock(text[end:], labelsIndent, label)
		b.WriteString(text[last:end])
		last = end
		if present {
			continue
		}
		b.WriteString(indent)
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(releaseNameExpression)
		b.WriteString("\n")
	}
	b.WriteString(text[last:])
	return Document(b.String())
}

// labelBlock inspects the lines following `labels:` and returns the indentation
// for a new label and whether label is already set.
func labelBlock(rest, labelsIndent, label string) (string, bool) {
	indent := labelsIndent + "  "
	first := true
	for _, line := range strings.Split(rest, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			break
		}
		lineIndent := line[:len(line)-len(trimmed)]
		if len(lineIndent) <= len(labelsIndent) {
			break
		}
		if first {
			indent = lineIndent
			first = false
		}
		if strings.HasPrefix(trimmed, label+":") {
			return indent, true
		}
	}
	return indent, false
}
