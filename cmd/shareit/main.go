// Command shareit runs the ShareIt item sharing service.
package main

import (
	"fmt"
	"os"

	"shareit/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
