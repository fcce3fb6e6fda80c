// Command netquery is a natural-language query tool for a network CMDB.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/opscore-io/netquery/internal/adapters/driving/cli"
)

func main() {
	// Optional; environment variables win over the config file.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
