package main

import (
	"os"

	"github.com/meridian-erp/meridian-erp/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
