package main

import (
	"os"

	"github.com/kakomon/kakomon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
