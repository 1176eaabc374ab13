package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/v2"
	"gopkg.in/yaml.v3"
)

// writeStructured writes v as indented JSON or YAML. It reports false for any
// other format so the caller can render its own.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return true, err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("marshal yaml: %w", err)
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

// palette styles human output. With color off every method returns its
// input unchanged.
type palette struct {
	color bool

	title lipgloss.Style
	label lipgloss.Style
	on    lipgloss.Style
	off   lipgloss.Style
	warn  lipgloss.Style
	dim   lipgloss.Style
}

func newPalette(color bool) palette {
	return palette{
		color: color,
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		label: lipgloss.NewStyle().Bold(true),
		on:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		off:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (p palette) paint(st lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return st.Render(s)
}

func (p palette) Title(s string) string { return p.paint(p.title, s) }
func (p palette) Label(s string) string { return p.paint(p.label, s) }
func (p palette) Dim(s string) string   { return p.paint(p.dim, s) }

// Outcome colors an outcome or mode name by severity.
func (p palette) Outcome(s string) string {
	switch s {
	case "block":
		return p.paint(p.off, s)
	case "warn":
		return p.paint(p.warn, s)
	default:
		return p.paint(p.on, s)
	}
}

// Toggle renders a rule toggle state.
func (p palette) Toggle(enabled bool) string {
	if enabled {
		return p.paint(p.on, "on")
	}
	return p.paint(p.off, "off")
}
