// Command lukhas-seal creates, verifies, and embeds artifact seals.
package main

import (
	"context"
	"os"

	"lukhas.dev/seal/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
