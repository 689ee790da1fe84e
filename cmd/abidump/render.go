package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"golang.org/x/term"

	"github.com/wippyai/chain-abi/abi"
	"github.com/wippyai/chain-abi/abi/contract"
	"github.com/wippyai/chain-abi/abi/service"
	"github.com/wippyai/chain-abi/lower"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(f *os.File) *printer {
	return &printer{w: f, styled: term.IsTerminal(int(f.Fd()))}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) title(text string) {
	fmt.Fprintln(p.w, p.render(titleStyle, text))
}

func (p *printer) record(t wit.Type, hostValue, record any) {
	p.title("Host")
	fmt.Fprintf(p.w, "  %+v\n\n", hostValue)
	p.title("ABI record " + abi.TypeName(t))
	fmt.Fprintf(p.w, "  %s\n\n", p.render(resultStyle, fmt.Sprintf("%+v", record)))
}

func (p *printer) flat(t wit.Type, flat []uint64) {
	types := lower.FlattenType(t)
	p.title(fmt.Sprintf("Flat lowering (%d values)", len(flat)))
	for i, v := range flat {
		fmt.Fprintf(p.w, "  %3d %s %#x\n", i, p.render(typeStyle, api.ValueTypeName(types[i])), v)
	}
	if len(flat) > lower.MaxFlatParams {
		fmt.Fprintln(p.w, p.render(helpStyle, fmt.Sprintf("  exceeds %d flat params: passed by pointer", lower.MaxFlatParams)))
	}
	fmt.Fprintln(p.w)
}

func (p *printer) memory(info lower.Info, stored []byte) {
	p.title(fmt.Sprintf("Memory layout (size %d, align %d)", info.Size, info.Align))
	for _, line := range strings.Split(strings.TrimRight(hex.Dump(stored), "\n"), "\n") {
		fmt.Fprintln(p.w, "  "+line)
	}
}

func (p *printer) exports() {
	for _, ns := range []abi.Namespace{contract.Namespace, service.Namespace} {
		p.title(ns.Name)
		for _, fn := range ns.Exports {
			params := make([]string, len(fn.Params))
			for i, param := range fn.Params {
				params[i] = param.Name + ": " + p.render(typeStyle, abi.TypeName(param.Type))
			}
			n := len(lower.FlattenTypes(fn.ParamTypes()))
			passing := fmt.Sprintf("%d flat", n)
			if n > lower.MaxFlatParams {
				passing = fmt.Sprintf("%d flat, spilled to memory", n)
			}
			fmt.Fprintf(p.w, "  %s(%s) %s\n",
				p.render(funcStyle, fn.Name),
				strings.Join(params, ", "),
				p.render(helpStyle, "["+passing+"]"))
		}
		fmt.Fprintln(p.w)
	}
}

func (p *printer) fail(w io.Writer, err error) {
	msg := "Error: " + err.Error()
	if p.styled {
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)
}
