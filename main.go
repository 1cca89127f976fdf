package main

import (
	"os"

	"github.com/nalanda-edu/nalanda/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
