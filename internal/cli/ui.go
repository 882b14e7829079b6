package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ANSI 256 palette shared by every command.
var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	styleID      = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleCommand = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	styleKey     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	styleSpinner = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleHit     = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)

// status is the kind of a one-line message printed by a command.
type status int

const (
	statusOK status = iota
	statusFailed
	statusWarn
	statusNote
)

type mark struct {
	glyph string
	color lipgloss.Style
	body  lipgloss.Style
}

var marks = map[status]mark{
	statusOK:     {"✓", lipgloss.NewStyle().Foreground(lipgloss.Color("35")), lipgloss.NewStyle()},
	statusFailed: {"✗", lipgloss.NewStyle().Foreground(lipgloss.Color("167")), lipgloss.NewStyle()},
	statusWarn:   {"!", lipgloss.NewStyle().Foreground(lipgloss.Color("220")), lipgloss.NewStyle().Foreground(lipgloss.Color("220"))},
	statusNote:   {"›", lipgloss.NewStyle().Foreground(lipgloss.Color("245")), lipgloss.NewStyle()},
}

// stdout is where status lines go; tests swap it.
var stdout io.Writer = os.Stdout

func printStatus(s status, format string, args ...any) {
	m := marks[s]
	fmt.Fprintf(stdout, "%s %s\n", m.color.Render(m.glyph), m.body.Render(fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { printStatus(statusOK, format, args...) }
func printError(format string, args ...any)   { printStatus(statusFailed, format, args...) }
func printWarning(format string, args ...any) { printStatus(statusWarn, format, args...) }
func printInfo(format string, args ...any)    { printStatus(statusNote, format, args...) }

func printDetail(format string, args ...any) {
	fmt.Fprintf(stdout, "  %s\n", styleMuted.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintf(stdout, "  %s %s\n", styleMuted.Render("→"), styleValue.Render(path))
}

func printKeyValueTo(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s\n", styleKey.Render(key), styleValue.Render(value))
}

// printStats prints "N nodes · M edges · cached|fresh". cached refers to the
// rendered artifacts, not the graph.
func printStats(nodeCount, edgeCount int, cached bool) {
	origin := styleMuted.Render("fresh")
	if cached {
		origin = styleHit.Render("cached")
	}
	sep := styleMuted.Render(" · ")
	fmt.Fprintln(stdout, "  "+strings.Join([]string{
		styleMuted.Render(fmt.Sprintf("%d nodes", nodeCount)),
		styleMuted.Render(fmt.Sprintf("%d edges", edgeCount)),
		origin,
	}, sep))
}

func printNextStep(description, cmd string) {
	fmt.Fprintf(stdout, "%s %s\n", styleMuted.Render(description+":"), styleCommand.Render(cmd))
}
