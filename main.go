package main

import (
	"os"

	"github.com/signalnine/retrievalbench/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
