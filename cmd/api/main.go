package main

import (
	"os"

	"github.com/georgemunganga/nota-backend/cmd/api/commands"
)

var version = "dev"

func main() {
	commands.SetVersion(version)
	// errors are already printed by the printer package
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
