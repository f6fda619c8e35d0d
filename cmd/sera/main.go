// Command sera is the operator CLI: it starts organize runs, inspects their
// progress, and delivers review and finalize decisions to the coordinators.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	ctx := &commandContext{}
	defer ctx.close()

	cmd := newRootCommand(ctx)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
