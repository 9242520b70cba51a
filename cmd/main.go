package main

import (
	"os"

	"trivia-miniapp-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
