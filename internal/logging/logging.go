// Package logging configures the process-wide logger.
package logging

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Setup points the logger at stderr so command output on stdout stays
// machine-readable.
func Setup(verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}
