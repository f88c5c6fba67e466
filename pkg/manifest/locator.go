package manifest

import (
	"iter"
	"regexp"
)

// imageFieldPattern matches an `image:` key (optionally a list item) with a
// non-empty value. The value continues on every following line that starts
// with a template pipe.
var imageFieldPattern = regexp.MustCompile(`(?m)^([ \t]*(?:-[ \t]+)?image:[ \t]*)(\S.*(?:\n[ \t]*\|.*)*)`)

// Field is one located image field. Start and End are byte offsets of the
// whole match within the document.
type Field struct {
	Start  int
	End    int
	Prefix string
	Value  string
}

// Text returns the matched text.
func (f Field) Text() string {
	return f.Prefix + f.Value
}

// ImageFields returns the image fields of the document in order. Every call
// scans the document from the beginning.
func (d Document) ImageFields() iter.Seq[Field] {
	text := string(d)
	return func(yield func(Field) bool) {
		pos := 0
		for pos < len(text) {
			loc := imageFieldPattern.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}
			f := Field{
				Start:  pos + loc[0],
				End:    pos + loc[1],
				Prefix: text[pos+loc[2] : pos+loc[3]],
				Value:  text[pos+loc[4] : pos+loc[5]],
			}
			if !yield(f) {
				return
			}
			pos = f.End
		}
	}
}
