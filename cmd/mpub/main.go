package main

import (
	"os"

	"github.com/weaveworks/marketplace-publisher/pkg/exitcodes"
	log "github.com/weaveworks/marketplace-publisher/pkg/log"
)

func main() {
	if err := Execute(); err != nil {
		log.Error("Command failed", "error", err)
		if code, ok := exitcodes.IsExitCodeError(err); ok {
			os.Exit(code)
		}
		os.Exit(exitcodes.ExitGeneralRuntimeError)
	}
}
