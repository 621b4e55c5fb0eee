package main

import (
	"fmt"
	"io"
	"strings"
)

type statusLevel int

const (
	levelInfo statusLevel = iota
	levelOK
	levelWarn
	levelError
)

var statusLevels = map[statusLevel]struct{ label, color string }{
	levelInfo:  {"INFO", "\x1b[34m"},
	levelOK:    {"OK", "\x1b[32m"},
	levelWarn:  {"WARN", "\x1b[33m"},
	levelError: {"ERROR", "\x1b[31m"},
}

const ansiReset = "\x1b[0m"

// statusPrinter writes aligned "label: [LEVEL] detail" lines grouped under
// section headers. Color is used only on terminals.
type statusPrinter struct {
	w        io.Writer
	colorize bool
	started  bool
}

func newStatusPrinter(w io.Writer) *statusPrinter {
	return &statusPrinter{w: w, colorize: isTerminal(w)}
}

func (p *statusPrinter) section(title string) {
	if p.started {
		fmt.Fprintln(p.w)
	}
	p.started = true
	heading := "== " + strings.TrimSpace(title) + " =="
	p.println(heading, statusLevels[levelInfo].color)
	p.println(strings.Repeat("-", len(heading)), statusLevels[levelInfo].color)
}

func (p *statusPrinter) line(label string, level statusLevel, detail string) {
	tag := "[" + statusLevels[level].label + "]"
	if detail != "" {
		tag += " " + detail
	}
	p.println(fmt.Sprintf("  %-24s %s", label+":", tag), statusLevels[level].color)
}

func (p *statusPrinter) block(text string) {
	fmt.Fprintln(p.w, text)
}

func (p *statusPrinter) println(text, color string) {
	if p.colorize && color != "" {
		text = color + text + ansiReset
	}
	fmt.Fprintln(p.w, text)
}
