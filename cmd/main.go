package main

import (
	"os"

	"github.com/navlens/fundfaq/cmd/fundfaq"
)

func main() {
	if err := fundfaq.Execute(); err != nil {
		os.Exit(1)
	}
}
