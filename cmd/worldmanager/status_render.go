package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	label string
	color text.Colors
}{
	statusInfo:  {"INFO", text.Colors{text.FgBlue}},
	statusOK:    {"OK", text.Colors{text.FgGreen}},
	statusWarn:  {"WARN", text.Colors{text.FgYellow}},
	statusError: {"ERROR", text.Colors{text.FgRed}},
}

const statusLabelWidth = 20

// statusReport writes the sectioned "label: [KIND] message" lines of
// config validate. Colors are only used on a terminal.
type statusReport struct {
	out      io.Writer
	colorize bool
}

func (r statusReport) section(title string) {
	header := "== " + title + " =="
	r.print(text.Colors{text.FgBlue}, header)
	r.print(text.Colors{text.FgBlue}, strings.Repeat("-", len(header)))
}

func (r statusReport) line(label string, kind statusKind, message string) {
	style := statusStyles[kind]
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", style.label)
	if message != "" {
		line += " " + message
	}
	r.print(style.color, line)
}

func (r statusReport) print(color text.Colors, line string) {
	if r.colorize {
		line = color.Sprint(line)
	}
	fmt.Fprintln(r.out, line)
}
