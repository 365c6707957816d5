package infrastructure

import (
	"crewopt/internal/domain"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primary = lipgloss.Color("#7C3AED")
	success = lipgloss.Color("#10B981")
	danger  = lipgloss.Color("#EF4444")
	muted   = lipgloss.Color("#6B7280")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primary)
	labelStyle   = lipgloss.NewStyle().Foreground(muted)
	optimalStyle = lipgloss.NewStyle().Bold(true).Foreground(success)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(danger)
)

// ConsoleRenderer formats an optimization result for a terminal
type ConsoleRenderer struct {
	decimals int
}

func NewConsoleRenderer(decimals int) *ConsoleRenderer {
	return &ConsoleRenderer{decimals: decimals}
}

func (r *ConsoleRenderer) Render(title string, result *domain.OptimizationResult) string {
	var b strings.Builder
	p := result.Parameters

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s: N=%d, λ=%g, μ=%g", title, p.Population, p.FailureRate, p.ServiceRate)))
	b.WriteString("\n")

	for _, c := range result.Candidates {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(fmt.Sprintf("For c = %d:", c.Crew)))
		b.WriteString("\n")
		if c.Err != nil {
			b.WriteString(errorStyle.Render(c.Err.Error()))
			b.WriteString("\n")
			continue
		}

		for n, pn := range c.Distribution {
			r.line(&b, fmt.Sprintf("P%d", n), r.num(pn))
		}
		m := c.Metrics
		r.line(&b, "L (mean number in system)", r.num(m.SystemLength)+" machines")
		r.line(&b, "Lq (mean number in queue)", r.num(m.QueueLength)+" machines")
		r.line(&b, "W (average total time in system)", r.num(m.SystemTime)+" hours")
		r.line(&b, "Wq (average queue time)", r.num(m.QueueTime)+" hours")
		r.line(&b, "Repairer utilization", r.num(m.Utilization))
		r.line(&b, "Expected cost per hour", fmt.Sprintf("$%.2f", m.Cost))
	}

	b.WriteString("\n")
	if result.Optimal == nil {
		b.WriteString(errorStyle.Render("No feasible crew size"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(optimalStyle.Render("Optimal solution:"))
	b.WriteString("\n")
	r.line(&b, "Number of repairmen (c)", fmt.Sprintf("%d", result.Optimal.Crew))
	r.line(&b, "Minimum expected cost per hour", fmt.Sprintf("$%.2f", result.Optimal.Metrics.Cost))
	return b.String()
}

func (r *ConsoleRenderer) line(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(" = ")
	b.WriteString(value)
	b.WriteString("\n")
}

func (r *ConsoleRenderer) num(v float64) string {
	return fmt.Sprintf("%.*f", r.decimals, v)
}
