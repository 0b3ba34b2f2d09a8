package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/meteor-impact-service/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "impactctl:", err)
		os.Exit(1)
	}
}
