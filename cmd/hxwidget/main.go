// Package main provides the entry point for the hxwidget CLI.
package main

import (
	"fmt"
	"os"

	"github.com/pthm/hxwidget/cmd/hxwidget/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
