package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/elcharitas/mjolnir/internal/config"
	"github.com/elcharitas/mjolnir/internal/convert"
	"github.com/elcharitas/mjolnir/internal/engine"
	"github.com/elcharitas/mjolnir/internal/frontend"
	"github.com/elcharitas/mjolnir/internal/model"
	"github.com/elcharitas/mjolnir/internal/protocol"
	"github.com/elcharitas/mjolnir/internal/report"
	"github.com/elcharitas/mjolnir/internal/tui"
)

func AddCommands(root *cobra.Command) {
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newRulesCmd())
}

// readInput returns the contract source plus a display name for reports.
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) > 0 {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(b), args[0], nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", "", err
	}
	return string(b), "stdin", nil
}

func newAnalyzeCmd() *cobra.Command {
	var (
		format     string
		outputFile string
		failOn     string
		useTUI     bool
		stdinMode  bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a contract for vulnerabilities and quality issues",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var threshold model.Severity
			if failOn != "" {
				sev, ok := model.ParseSeverity(failOn)
				if !ok {
					return fmt.Errorf("invalid --fail-on value %q: want low, medium or high", failOn)
				}
				threshold = sev
			}

			cwd, _ := os.Getwd()
			cfg, _, err := config.Load(cwd)
			if err != nil {
				return err
			}

			if stdinMode {
				cmd.SilenceUsage = true
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				out, err := protocol.Analyze(cmd.Context(), raw, cfg)
				if err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), string(protocol.EncodeError(err)))
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			code, name, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			result, err := engine.New().Analyze(cmd.Context(), code, cfg)
			if err != nil {
				return err
			}

			if useTUI {
				return tui.Run(result, code)
			}
			switch format {
			case "json":
				data, _ := json.MarshalIndent(result, "", "  ")
				if outputFile != "" {
					return os.WriteFile(outputFile, data, 0o644)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "sarif":
				data, err := report.ToSARIF(result.Issues, name)
				if err != nil {
					return err
				}
				if outputFile != "" {
					return os.WriteFile(outputFile, data, 0o644)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			default:
				m := result.Metrics
				fmt.Fprintf(cmd.OutOrStdout(), "Score: %d (security %d, performance %d, gas %d, quality %d)\n",
					result.Score, m.Security, m.Performance, m.GasEfficiency, m.CodeQuality)
				for _, is := range result.Issues {
					if is.Line > 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "- [%s] line %d: %s\n", is.Severity, is.Line, is.Message)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "- [%s] %s\n", is.Severity, is.Message)
					}
				}
			}

			if failOn != "" {
				for _, is := range result.Issues {
					if model.SeverityGTE(is.Severity, threshold) {
						return fmt.Errorf("fail-on threshold met: %s", is.Severity)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table|json|sarif")
	cmd.Flags().StringVarP(&outputFile, "out", "o", "", "Write report to file instead of stdout")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Fail if an issue of this severity or higher is found (low|medium|high)")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Render interactive TUI output")
	cmd.Flags().BoolVar(&stdinMode, "stdin", false, "Read one JSON AnalyzeRequest from stdin, write one JSON response")
	return cmd
}

func newConvertCmd() *cobra.Command {
	var (
		target     string
		optimize   bool
		outputFile string
		asJSON     bool
		stdinMode  bool
	)
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a contract between ink! and Solidity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stdinMode {
				cmd.SilenceUsage = true
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				out, err := protocol.Convert(raw)
				if err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), string(protocol.EncodeError(err)))
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			dialect, ok := model.ParseDialect(target)
			if !ok {
				return &model.ConfigError{Field: "target", Detail: "unknown conversion target " + target}
			}
			code, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			m, err := frontend.DetectAndParse(code)
			if err != nil {
				return err
			}
			result, err := convert.Convert(m, dialect, optimize)
			if err != nil {
				return err
			}

			if asJSON {
				data, _ := json.MarshalIndent(result, "", "  ")
				if outputFile != "" {
					return os.WriteFile(outputFile, data, 0o644)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if result.CompilationOutput != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), result.CompilationOutput)
			}
			if outputFile != "" {
				return os.WriteFile(outputFile, []byte(result.ConvertedCode), 0o644)
			}
			fmt.Fprint(cmd.OutOrStdout(), result.ConvertedCode)
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "Target dialect: ink|solidity")
	cmd.Flags().BoolVar(&optimize, "optimize", false, "Apply behavior-preserving optimizations")
	cmd.Flags().StringVarP(&outputFile, "out", "o", "", "Write converted source to file instead of stdout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full ConversionResult as JSON")
	cmd.Flags().BoolVar(&stdinMode, "stdin", false, "Read one JSON ConversionRequest from stdin, write one JSON response")
	return cmd
}
