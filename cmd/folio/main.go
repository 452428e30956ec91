package main

import (
	"fmt"
	"os"

	"folio/internal/log"
)

var (
	version = "dev"
)

// Entry point for the application
func main() {
	err := NewRootCmd().Execute()
	_ = log.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorText(err.Error()))
		os.Exit(1)
	}
}
