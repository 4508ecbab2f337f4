package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elcharitas/mjolnir/internal/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rules", Short: "List available rules"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in analysis rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := rules.NewRegistry()
			reg.RegisterBuiltin()
			for _, r := range reg.Rules() {
				m := r.Meta()
				cats := make([]string, len(m.Categories))
				for i, c := range m.Categories {
					cats[i] = string(c)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", m.ID, m.Severity, strings.Join(cats, ","), m.Description)
			}
			return nil
		},
	})
	return cmd
}
