// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/weaveworks/marketplace-publisher/pkg/log"
)

// CaptureLogOutput redirects log output during testFunc and returns what was written.
// The original writer and level are restored afterwards, even if testFunc panics.
//
//	output, err := testutil.CaptureLogOutput(log.LevelDebug, func() {
//	    log.Info("resolved", "repository", "policy-agent")
//	})
//	require.NoError(t, err)
//	assert.Contains(t, output, "policy-agent")
func CaptureLogOutput(logLevel log.Level, testFunc func()) (string, error) {
	originalLevel := log.CurrentLevel()

	var logBuf bytes.Buffer
	restoreLog := log.SetOutput(&logBuf)
	defer restoreLog()

	log.SetLevel(logLevel)
	defer log.SetLevel(originalLevel)

	var panicErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = fmt.Errorf("panic during log capture: %v", r)
			}
		}()
		testFunc()
	}()

	return logBuf.String(), panicErr
}

// ContainsLog checks if the log output contains the specified message
func ContainsLog(output, message string) bool {
	return strings.Contains(output, message)
}
