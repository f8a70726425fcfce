/*
=================================================================================
HIDRA-WATCH
=================================================================================

A terminal dashboard that owns a running World and steps it on a timer,
rendering tick count, output values, and the metrics ring buffer with
bubbletea/lipgloss. The World itself is single-writer (world.World.mu); this
program is the only goroutine driving it, so there is no additional
synchronization here beyond the tea.Program's own event loop.
=================================================================================
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hidra-sim/hidra/config"
	"github.com/hidra-sim/hidra/types"
	"github.com/hidra-sim/hidra/world"
)

func main() {
	var configPath, genomePath string
	var inputCount, outputCount int
	var stepInterval time.Duration
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flag.StringVar(&genomePath, "genome", "", "Path to a compiled genome file (required)")
	flag.IntVar(&inputCount, "inputs", 0, "Number of sequential input node ids (1..N) to declare")
	flag.IntVar(&outputCount, "outputs", 0, "Number of sequential output node ids (1..N) to declare")
	flag.DurationVar(&stepInterval, "interval", 200*time.Millisecond, "Time between ticks")
	flag.Parse()

	if genomePath == "" {
		fmt.Fprintln(os.Stderr, "hidra-watch: --genome is required")
		os.Exit(1)
	}
	raw, err := os.ReadFile(genomePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hidra-watch: reading genome: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hidra-watch: %v\n", err)
		os.Exit(1)
	}
	inputs := make([]types.InputID, inputCount)
	for i := range inputs {
		inputs[i] = types.InputID(i + 1)
	}
	outputs := make([]types.OutputID, outputCount)
	for i := range outputs {
		outputs[i] = types.OutputID(i + 1)
	}
	w, err := world.New(cfg, raw, inputs, outputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hidra-watch: %v\n", err)
		os.Exit(1)
	}

	m := newModel(w, stepInterval)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "hidra-watch: %v\n", err)
		os.Exit(1)
	}
}

type tickMsg struct{}

type model struct {
	w        *world.World
	interval time.Duration
	paused   bool
	lastErr  error
}

func newModel(w *world.World, interval time.Duration) model {
	return model{w: w, interval: interval}
}

func (m model) Init() tea.Cmd {
	return m.scheduleTick()
}

func (m model) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			return m, nil
		case "s":
			if m.lastErr == nil {
				m.lastErr = m.w.Step()
			}
			return m, nil
		}
	case tickMsg:
		if !m.paused && m.lastErr == nil {
			m.lastErr = m.w.Step()
		}
		return m, m.scheduleTick()
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231"))
	haltStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (m model) View() string {
	halted, cause := m.w.Halted()

	out := titleStyle.Render("hidra-watch") + "\n\n"

	out += labelStyle.Render("tick:     ") + valueStyle.Render(fmt.Sprintf("%d", m.w.Tick())) + "\n"
	out += labelStyle.Render("neurons:  ") + valueStyle.Render(fmt.Sprintf("%d", m.w.NeuronCount())) + "\n"

	if halted {
		reason := ""
		if cause != nil {
			reason = cause.Error()
		}
		out += haltStyle.Render("HALTED: "+reason) + "\n"
	} else if m.lastErr != nil {
		out += haltStyle.Render("error: "+m.lastErr.Error()) + "\n"
	} else if m.paused {
		out += labelStyle.Render("[paused]") + "\n"
	}

	out += "\n" + titleStyle.Render("outputs") + "\n"
	outputs := m.w.OutputValues()
	ids := make([]types.OutputID, 0, len(outputs))
	for id := range outputs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		out += labelStyle.Render(fmt.Sprintf("  #%d: ", id)) + valueStyle.Render(fmt.Sprintf("%.4f", outputs[id])) + "\n"
	}

	samples := m.w.Metrics()
	if len(samples) > 0 {
		out += "\n" + titleStyle.Render("recent samples") + "\n"
		start := 0
		if len(samples) > 8 {
			start = len(samples) - 8
		}
		for _, s := range samples[start:] {
			out += labelStyle.Render(fmt.Sprintf("  tick %-6d ", s.Tick)) +
				valueStyle.Render(fmt.Sprintf("neurons=%d health=%.2f pending=%d", s.ActiveNeurons, s.MeanHealth, s.EventsPending)) + "\n"
		}
	}

	out += "\n" + helpStyle.Render("space pause · s single-step · q quit")
	return out
}
