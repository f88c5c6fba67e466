// Package values builds the images subtree of a chart's values document from
// resolved digests and merges it into the existing document.
package values

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/weaveworks/marketplace-publisher/pkg/fileutil"
)

// Document is a parsed values document.
type Document = map[string]any

// Load reads the values document at path. An empty file yields an empty document.
func Load(fsys afero.Fs, path string) (Document, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a values document.
func Parse(data []byte) (Document, error) {
	doc := Document{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse values: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Marshal encodes a values document with two-space indentation.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode values: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode values: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes doc to path, keeping the mode of an existing file.
func Save(fsys afero.Fs, path string, doc Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	return fileutil.WriteFilePreservingMode(fsys, path, data)
}

// Merge deep-merges src into dst. Nested mappings are merged key by key,
// scalars and lists from src replace those in dst and keys only in dst are kept.
// dst is modified in place and must not be nil.
func Merge(dst, src Document) error {
	if dst == nil {
		return errors.New("failed to merge values: nil destination document")
	}
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge values: %w", err)
	}
	return nil
}

// Lookup returns the value at a dotted path.
func Lookup(doc Document, path string) (any, bool) {
	var cur any = doc
	for _, key := range splitPath(path) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// nest wraps value in one mapping per element of the dotted path.
func nest(path string, value any) Document {
	keys := splitPath(path)
	out := value
	for i := len(keys) - 1; i >= 0; i-- {
		out = map[string]any{keys[i]: out}
	}
	if doc, ok := out.(map[string]any); ok {
		return doc
	}
	return Document{}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
