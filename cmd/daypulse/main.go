package main

import (
	"context"
	"fmt"
	"os"

	"github.com/daypulse/daypulse/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "daypulse:", err)
		os.Exit(1)
	}
}
