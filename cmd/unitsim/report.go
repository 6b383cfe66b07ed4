package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/1siamBot/unitcore/engine/core"
	"github.com/1siamBot/unitcore/engine/sim"
	"github.com/1siamBot/unitcore/engine/stats"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Width(22).Foreground(lipgloss.Color("8"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	stateStyles = map[core.AIState]lipgloss.Style{
		core.StateIdle:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		core.StateHarvesting: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		core.StateAttacking:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

func metricTable(metrics []stats.Metric) string {
	var b strings.Builder
	for _, m := range metrics {
		b.WriteString(labelStyle.Render(m.Name))
		b.WriteString(valueStyle.Render(fmt.Sprint(m.Value)))
		b.WriteByte('\n')
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func stateSummary(units []sim.UnitState, player int) string {
	counts := make(map[core.AIState]int)
	for _, u := range units {
		if u.Player == player {
			counts[u.State]++
		}
	}
	var parts []string
	for st := core.StateIdle; st <= core.StateAttacking; st++ {
		if counts[st] == 0 {
			continue
		}
		style, ok := stateStyles[st]
		if !ok {
			style = valueStyle
		}
		parts = append(parts, style.Render(fmt.Sprintf("%s %d", st, counts[st])))
	}
	if len(parts) == 0 {
		return dimStyle.Render("no units")
	}
	return strings.Join(parts, "  ")
}

// report renders the end-of-run summary
func report(s *sim.Simulation, elapsed time.Duration) string {
	var b strings.Builder
	ticks := s.World.TickCount
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  tick %d", s.Map.Name, ticks)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  (%s, %.0f ticks/s)", elapsed.Round(time.Millisecond), float64(ticks)/max(elapsed.Seconds(), 1e-9))))
	b.WriteString("\n\n")

	units := s.UnitStates()
	for _, p := range s.Players.Players {
		fmt.Fprintf(&b, "%s\n", lipgloss.NewStyle().Bold(true).Render(p.Name))
		b.WriteString(labelStyle.Render("  stockpile"))
		b.WriteString(valueStyle.Render(fmt.Sprintf("food %d  building %d  rare %d",
			p.Stockpile[core.TargetFoodResource], p.Stockpile[core.TargetBuildingResource], p.Stockpile[core.TargetRareResource])))
		b.WriteByte('\n')
		b.WriteString(labelStyle.Render("  units"))
		b.WriteString(stateSummary(units, p.ID))
		b.WriteString("\n\n")
	}
	b.WriteString(metricTable(s.Stats.Metrics()))
	return b.String()
}
