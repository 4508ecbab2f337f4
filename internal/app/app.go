package app

import (
	"github.com/spf13/cobra"

	"github.com/elcharitas/mjolnir/internal/cli"
)

func BuildRoot() *cobra.Command {
	root := &cobra.Command{Use: "mjolnir", Short: "Smart contract analyzer and cross-dialect converter"}
	cli.AddCommands(root)
	return root
}
