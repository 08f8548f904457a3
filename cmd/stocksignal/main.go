package main

import (
	"os"

	"github.com/wonny/stocksignal/cmd/stocksignal/commands"
)

// main is the entry point for the stocksignal CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/stocksignal [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
