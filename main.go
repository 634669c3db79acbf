package main

import (
	"os"

	"github.com/novax/sochratic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
