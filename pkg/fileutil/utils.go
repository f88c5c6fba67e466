package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileExists checks if a regular file exists at the given path
func FileExists(fsys afero.Fs, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if file exists: %w", err)
	}
	return !info.IsDir(), nil
}

// DirExists checks if a directory exists at the given path
func DirExists(fsys afero.Fs, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat directory: %w", err)
	}
	return info.IsDir(), nil
}

// IsYAMLFile reports whether path has a YAML extension.
func IsYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == YAMLExtension || ext == YAMLAltExtension
}

// FindYAMLFiles returns every YAML file below root in lexical walk order.
func FindYAMLFiles(fsys afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !IsYAMLFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

// WriteFilePreservingMode writes data to path, keeping the mode of an existing file.
// New files are created with ReadWriteUserReadOthers.
func WriteFilePreservingMode(fsys afero.Fs, path string, data []byte) error {
	perm := os.FileMode(ReadWriteUserReadOthers)
	if info, err := fsys.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := afero.WriteFile(fsys, path, data, perm); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// StagedSuffix is appended to a path while its new content is staged.
const StagedSuffix = ".mpub-staged"

// File is a path and the content to write to it.
type File struct {
	Path string
	Data []byte
}

// ReplaceFiles writes every file to a staged copy next to its target and only
// renames the copies over the targets once all of them were written. When a
// staged write fails the copies are removed and no target is touched.
// Targets keep their mode.
func ReplaceFiles(fsys afero.Fs, files []File) error {
	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, path := range staged {
			_ = fsys.Remove(path)
		}
	}

	for _, f := range files {
		perm := os.FileMode(ReadWriteUserReadOthers)
		if info, err := fsys.Stat(f.Path); err == nil {
			perm = info.Mode().Perm()
		}
		tmp := f.Path + StagedSuffix
		if err := afero.WriteFile(fsys, tmp, f.Data, perm); err != nil {
			_ = fsys.Remove(tmp)
			cleanup()
			return fmt.Errorf("failed to stage file %s: %w", f.Path, err)
		}
		staged = append(staged, tmp)
	}

	for i, f := range files {
		if err := fsys.Rename(staged[i], f.Path); err != nil {
			cleanup()
			return fmt.Errorf("failed to replace file %s: %w", f.Path, err)
		}
	}
	return nil
}
