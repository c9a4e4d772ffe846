// Command reelranker is a client for the ReelRanker short-form video API.
package main

import (
	"os"

	"github.com/jonesrussell/reelranker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
