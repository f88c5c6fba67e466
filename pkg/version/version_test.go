package version

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaveworks/marketplace-publisher/internal/command"
	"github.com/weaveworks/marketplace-publisher/pkg/exitcodes"
)

func TestIsVersionGreaterOrEqual(t *testing.T) {
	testCases := []struct {
		name     string
		v1       string
		v2       string
		expected bool
	}{
		{name: "v1 greater than v2", v1: "3.15.0", v2: "3.8.0", expected: true},
		{name: "v1 equal to v2", v1: "3.8.0", v2: "3.8.0", expected: true},
		{name: "v1 less than v2", v1: "3.7.2", v2: "3.8.0", expected: false},
		{name: "v1 patch version greater", v1: "3.8.2", v2: "3.8.0", expected: true},
		{name: "v1 major version greater", v1: "4.0.0", v2: "3.8.0", expected: true},
		{name: "v1 major version less", v1: "2.17.0", v2: "3.8.0", expected: false},
		{name: "minor compared numerically", v1: "3.10.0", v2: "3.8.0", expected: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := isVersionGreaterOrEqual(tc.v1, tc.v2)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := isVersionGreaterOrEqual("not-a-version", "3.8.0")
	assert.Error(t, err)
}

func TestParseHelmVersionString(t *testing.T) {
	assert.Equal(t, "3.14.2", parseHelmVersionString("v3.14.2+g0e1f115\n"))
	assert.Equal(t, "3.8.0", parseHelmVersionString("3.8.0"))
}

func TestCheckHelmVersion(t *testing.T) {
	tests := []struct {
		name    string
		resp    command.FakeResponse
		wantErr string
	}{
		{name: "supported", resp: command.FakeResponse{Stdout: "v3.14.2+g0e1f115\n"}},
		{name: "too old", resp: command.FakeResponse{Stdout: "v3.7.1+g1d11fcb\n"}, wantErr: "not supported"},
		{name: "garbage", resp: command.FakeResponse{Stdout: "helm\n"}, wantErr: "cannot parse"},
		{name: "helm missing", resp: command.FakeResponse{Err: errors.New("executable file not found")}, wantErr: "failed to get Helm version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := command.NewFake().On("helm version --short", tt.resp)
			err := CheckHelmVersion(context.Background(), runner)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var exitErr *exitcodes.ExitCodeError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, exitcodes.ExitHelmCommandFailed, exitErr.Code)
		})
	}
}
