package main

import (
	"os"

	"github.com/spf13/cobra"
)

func runStrategiesCommand(cmd *cobra.Command, args []string) {
	renderStrategies(os.Stdout)
}
