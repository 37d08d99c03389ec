// Command studyctl manages the study review ledger from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/371050/study-pwa/internal/cli"
	"github.com/371050/study-pwa/internal/redact"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand(nil)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", redact.Error(err))
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
