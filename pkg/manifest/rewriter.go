package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	log "github.com/weaveworks/marketplace-publisher/pkg/log"
	"github.com/weaveworks/marketplace-publisher/pkg/naming"
)

// DefaultValuesPath is where the images mapping lives in the chart values.
const DefaultValuesPath = "global.azure.images"

// ReferenceExpression returns the indirect registry/image@digest reference for
// logical name, with every part looked up under valuesPath.
func ReferenceExpression(valuesPath, name string) string {
	base := ".Values." + valuesPath + "." + name
	return fmt.Sprintf("{{ %s.registry }}/{{ %s.image }}@{{ %s.digest }}", base, base, base)
}

// Rewriter replaces the image fields of Deployment documents with indirect references.
type Rewriter struct {
	valuesPath string
	resolver   *naming.Resolver
	existing   *regexp.Regexp
}

// NewRewriter returns a Rewriter emitting references under valuesPath. An empty
// valuesPath selects DefaultValuesPath and a nil resolver the default rules.
func NewRewriter(valuesPath string, resolver *naming.Resolver) *Rewriter {
	if valuesPath == "" {
		valuesPath = DefaultValuesPath
	}
	if resolver == nil {
		resolver = naming.NewResolver(nil)
	}
	base := regexp.QuoteMeta(".Values."+valuesPath+".") + `([A-Za-z0-9_]+)`
	existing := regexp.MustCompile(`^\{\{ ` + base + `\.registry \}\}/\{\{ ` + base + `\.image \}\}@\{\{ ` + base + `\.digest \}\}$`)
	return &Rewriter{
		valuesPath: valuesPath,
		resolver:   resolver,
		existing:   existing,
	}
}

// ValuesPath returns the dotted values path references are emitted under.
func (r *Rewriter) ValuesPath() string {
	return r.valuesPath
}

// RewriteDocument rewrites every image field of a Deployment document and
// returns the new text with the logical names it emitted. baseName is the name
// derived from the document's path and applies when no override rule matches.
// Other documents are returned unchanged.
//
// A field already holding a reference under the same values path is kept as is,
// so rewriting is a fixed point.
func (r *Rewriter) RewriteDocument(doc Document, baseName string) (Document, sets.Set[string]) {
	used := sets.New[string]()
	if !doc.IsDeployment() {
		return doc, used
	}

	text := string(doc)
	var b strings.Builder
	last := 0
	for f := range doc.ImageFields() {
		b.WriteString(text[last:f.Start])
		last = f.End

		if name, ok := r.existingReference(f.Value); ok {
			used.Insert(name)
			b.WriteString(f.Text())
			continue
		}

		name := r.resolver.Resolve(baseName, f.Text())
		used.Insert(name)
		log.Debug("Rewriting image field", "logicalName", name, "value", f.Value)
		b.WriteString(f.Prefix)
		b.WriteString(ReferenceExpression(r.valuesPath, name))
	}
	b.WriteString(text[last:])

	return Document(b.String()), used
}

func (r *Rewriter) existingReference(value string) (string, bool) {
	m := r.existing.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil || m[1] != m[2] || m[2] != m[3] {
		return "", false
	}
	return m[1], true
}
