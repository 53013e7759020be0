// Command foundry compiles and runs a project of SQL models and Kafka
// Connect declarations (spec.md §1).
package main

import (
	"os"

	"github.com/foundrydata/foundry/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
