package chart

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	helmchart "helm.sh/helm/v3/pkg/chart"
	"sigs.k8s.io/yaml"

	"github.com/weaveworks/marketplace-publisher/pkg/fileutil"
)

// MetadataFile is the chart metadata file name.
const MetadataFile = "Chart.yaml"

// ValuesFile is the default values file name.
const ValuesFile = "values.yaml"

// ParsingError indicates a malformed or missing chart file.
type ParsingError struct {
	FilePath string
	Err      error
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("chart parsing failed for %s: %v", e.FilePath, e.Err)
}

func (e *ParsingError) Unwrap() error { return e.Err }

// LoadMetadata reads and validates Chart.yaml in dir.
func LoadMetadata(fsys afero.Fs, dir string) (*helmchart.Metadata, error) {
	path := filepath.Join(dir, MetadataFile)
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, &ParsingError{FilePath: path, Err: err}
	}

	md := &helmchart.Metadata{}
	if err := yaml.Unmarshal(data, md); err != nil {
		return nil, &ParsingError{FilePath: path, Err: err}
	}
	if err := md.Validate(); err != nil {
		return nil, &ParsingError{FilePath: path, Err: err}
	}
	return md, nil
}

// SaveMetadata writes md to Chart.yaml in dir.
func SaveMetadata(fsys afero.Fs, dir string, md *helmchart.Metadata) error {
	path := filepath.Join(dir, MetadataFile)
	if err := md.Validate(); err != nil {
		return &ParsingError{FilePath: path, Err: err}
	}
	data, err := yaml.Marshal(md)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return fileutil.WriteFilePreservingMode(fsys, path, data)
}
