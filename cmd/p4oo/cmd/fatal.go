package cmd

import (
	"fmt"
	"log"
	"os"
)

var (
	// exits of the p4oo command, replaced by recorders in tests

	logFatalln = log.Fatalln
	logFatalf  = log.Fatalf
	osExit     = os.Exit

	// infoLogger reports side notes, such as the config file in use or a spec with nothing
	// to delete, on stderr: stdout only carries identifiers, records and specs.
	infoLogger = log.New(os.Stderr, "", 0)
)

// wrapFatalln exits with msg, followed by the error when there is one
func wrapFatalln(msg string, err error) {
	if err == nil {
		logFatalln(msg)
	} else {
		logFatalf("%v", fmt.Errorf("%s: %w", msg, err))
	}
}
