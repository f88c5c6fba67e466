package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAndDirExists(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("chart/templates", ReadWriteExecuteUserReadExecuteOthers))
	require.NoError(t, afero.WriteFile(fsys, "chart/values.yaml", []byte("a: 1\n"), ReadWriteUserReadOthers))

	exists, err := FileExists(fsys, "chart/values.yaml")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = FileExists(fsys, "chart/templates")
	require.NoError(t, err)
	assert.False(t, exists, "a directory is not a file")

	exists, err = FileExists(fsys, "chart/missing.yaml")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = DirExists(fsys, "chart/templates")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = DirExists(fsys, "chart/values.yaml")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = DirExists(fsys, "nowhere")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIsYAMLFile(t *testing.T) {
	tests := map[string]bool{
		"values.yaml":            true,
		"templates/deploy.yml":   true,
		"UPPER.YAML":             true,
		"templates/_helpers.tpl": false,
		"Chart.lock":             false,
		"README.md":              false,
	}
	for path, want := range tests {
		assert.Equal(t, want, IsYAMLFile(path), path)
	}
}

func TestFindYAMLFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	files := []string{
		"chart/Chart.yaml",
		"chart/values.yaml",
		"chart/templates/_helpers.tpl",
		"chart/templates/clusters-service/deployment.yaml",
		"chart/charts/cluster-controller/templates/deployment.yaml",
		"chart/charts/cluster-controller/templates/NOTES.txt",
	}
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fsys, f, []byte("x"), ReadWriteUserReadOthers))
	}

	got, err := FindYAMLFiles(fsys, "chart")
	require.NoError(t, err)

	want := []string{
		"chart/Chart.yaml",
		filepath.Join("chart", "charts", "cluster-controller", "templates", "deployment.yaml"),
		filepath.Join("chart", "templates", "clusters-service", "deployment.yaml"),
		"chart/values.yaml",
	}
	assert.Equal(t, want, got)
}

func TestFindYAMLFilesMissingRoot(t *testing.T) {
	_, err := FindYAMLFiles(afero.NewMemMapFs(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestWriteFilePreservingMode(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "private.yaml", []byte("old"), ReadWriteUserPermission))

	require.NoError(t, WriteFilePreservingMode(fsys, "private.yaml", []byte("new")))
	info, err := fsys.Stat("private.yaml")
	require.NoError(t, err)
	assert.Equal(t, ReadWriteUserPermission, int(info.Mode().Perm()))

	data, err := afero.ReadFile(fsys, "private.yaml")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	require.NoError(t, WriteFilePreservingMode(fsys, "fresh.yaml", []byte("x")))
	info, err = fsys.Stat("fresh.yaml")
	require.NoError(t, err)
	assert.Equal(t, ReadWriteUserReadOthers, int(info.Mode().Perm()))
}

// failingFs fails to create failPath.
type failingFs struct {
	afero.Fs
	failPath string
}

func (f failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if name == f.failPath && flag&os.O_CREATE != 0 {
		return nil, errors.New("no space left on device")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestReplaceFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "chart/a.yaml", []byte("a"), ReadWriteUserPermission))

	require.NoError(t, ReplaceFiles(fsys, []File{
		{Path: "chart/a.yaml", Data: []byte("new a")},
		{Path: "chart/b.yaml", Data: []byte("new b")},
	}))

	data, err := afero.ReadFile(fsys, "chart/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "new a", string(data))
	info, err := fsys.Stat("chart/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, ReadWriteUserPermission, int(info.Mode().Perm()))

	data, err = afero.ReadFile(fsys, "chart/b.yaml")
	require.NoError(t, err)
	assert.Equal(t, "new b", string(data))

	for _, path := range []string{"chart/a.yaml", "chart/b.yaml"} {
		exists, err := FileExists(fsys, path+StagedSuffix)
		require.NoError(t, err)
		assert.False(t, exists, path)
	}
}

func TestReplaceFilesLeavesTargetsOnStagingFailure(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "chart/a.yaml", []byte("a"), ReadWriteUserReadOthers))
	require.NoError(t, afero.WriteFile(mem, "chart/b.yaml", []byte("b"), ReadWriteUserReadOthers))
	fsys := failingFs{Fs: mem, failPath: "chart/b.yaml" + StagedSuffix}

	err := ReplaceFiles(fsys, []File{
		{Path: "chart/a.yaml", Data: []byte("new a")},
		{Path: "chart/b.yaml", Data: []byte("new b")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chart/b.yaml")

	for path, want := range map[string]string{"chart/a.yaml": "a", "chart/b.yaml": "b"} {
		data, err := afero.ReadFile(mem, path)
		require.NoError(t, err)
		assert.Equal(t, want, string(data), path)

		exists, err := FileExists(mem, path+StagedSuffix)
		require.NoError(t, err)
		assert.False(t, exists, path)
	}
}
