package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elcharitas/mjolnir/internal/model"
	"github.com/elcharitas/mjolnir/internal/util"
)

type modelT struct {
	result *model.AnalysisResult
	source string
	cursor int
}

func initialModel(res *model.AnalysisResult, source string) modelT {
	return modelT{result: res, source: source}
}

func (m modelT) Init() tea.Cmd { return nil }

func (m modelT) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.result.Issues)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m modelT) View() string {
	var b strings.Builder
	mt := m.result.Metrics
	fmt.Fprintf(&b, "Score %d  (security %d, performance %d, gas %d, quality %d)\n\n",
		m.result.Score, mt.Security, mt.Performance, mt.GasEfficiency, mt.CodeQuality)
	for i, is := range m.result.Issues {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		if is.Line > 0 {
			fmt.Fprintf(&b, "%s[%s] line %d: %s\n", marker, is.Severity, is.Line, is.Message)
		} else {
			fmt.Fprintf(&b, "%s[%s] %s\n", marker, is.Severity, is.Message)
		}
	}
	if len(m.result.Issues) > 0 && m.cursor < len(m.result.Issues) {
		sel := m.result.Issues[m.cursor]
		if sel.Line > 0 && m.source != "" {
			fmt.Fprintf(&b, "\n%s\n", util.ExtractSnippet(m.source, sel.Line, 5))
		}
		if sel.Recommendation != "" {
			fmt.Fprintf(&b, "\n%s\n", sel.Recommendation)
		}
	}
	b.WriteString("\nup/down move, q quits\n")
	return b.String()
}

// Run launches a minimal issue browser for an analysis result. source is
// the analyzed contract text, used to show a snippet for the selected issue.
func Run(res *model.AnalysisResult, source string) error {
	p := tea.NewProgram(initialModel(res, source))
	_, err := p.Run()
	return err
}
