// Package printer renders validation progress to the terminal. Output keeps
// the section/check/verdict layout operators know from the original shell
// tooling: cyan section rules, yellow check headings, green/red verdict
// lines.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	headerColor  = color.New(color.FgWhite, color.Bold)
	ruleColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgBlue)
)

type Printer struct {
	out     io.Writer
	verbose bool
}

func New(out io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out}
}

func (p *Printer) WithVerbose(verbose bool) *Printer {
	p.verbose = verbose
	return p
}

// Header prints a section banner for a pipeline stage.
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.out)
	ruleColor.Fprintln(p.out, strings.Repeat("=", 60))
	headerColor.Fprintf(p.out, "🔧 %s\n", title)
	ruleColor.Fprintln(p.out, strings.Repeat("=", 60))
	fmt.Fprintln(p.out)
}

// Check prints a sub-check heading within a stage.
func (p *Printer) Check(format string, args ...any) {
	warnColor.Fprintf(p.out, "🔍 "+format+"\n", args...)
}

func (p *Printer) Success(format string, args ...any) {
	successColor.Fprintf(p.out, "✅ "+format+"\n", args...)
}

func (p *Printer) Failure(format string, args ...any) {
	failureColor.Fprintf(p.out, "❌ "+format+"\n", args...)
}

func (p *Printer) Warn(format string, args ...any) {
	warnColor.Fprintf(p.out, "⚠️  "+format+"\n", args...)
}

func (p *Printer) Info(format string, args ...any) {
	infoColor.Fprintf(p.out, "📋 "+format+"\n", args...)
}

// Plain prints an uncolored line.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Detail prints an indented uncolored line under the current check.
func (p *Printer) Detail(format string, args ...any) {
	fmt.Fprintf(p.out, "   "+format+"\n", args...)
}

// Blank prints an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.out)
}

// Verbose prints only when verbose output was requested.
func (p *Printer) Verbose(format string, args ...any) {
	if p.verbose {
		fmt.Fprintf(p.out, format+"\n", args...)
	}
}
