package main

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/racehorse-ledger/internal/console"
)

var (
	prompter      *console.Prompter
	isInteractive = console.IsInteractive
)

// newPrompter returns one prompter per process so buffered input is shared across questions
func newPrompter(cmd *cobra.Command) *console.Prompter {
	if prompter == nil {
		prompter = console.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	return prompter
}
