package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/codesolver/codesolver/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
