package main

import (
	"context"

	"github.com/bitdex/bitdex/cli/cmd"
)

func main() {
	ctx := context.Background()
	cmd.ExecuteContext(ctx)
}
