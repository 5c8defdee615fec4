// main is the entry point for the mergerisk CLI.
package main

import (
	"os"

	"github.com/mergerisk/mergerisk/cmd"
	"github.com/mergerisk/mergerisk/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogError(err)
		os.Exit(contract.ExitCodeFor(err))
	}
}
