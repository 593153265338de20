package main

import (
	"fmt"
	"os"

	"github.com/Dicklesworthstone/gpuscope/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gpuscope:", err)
		os.Exit(1)
	}
}
