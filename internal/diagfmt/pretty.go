// Package diagfmt renders diagnostics for humans.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"siergen/internal/diag"
	"siergen/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
)

// Pretty formats diagnostics in a human-readable form, one per entry of
// bag.Items() (call bag.Sort() beforehand). Each diagnostic prints
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed, when opts.Context is set, by the offending source line with a
// ^~~~ underline covering the span, then notes in the same layout.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeHeading(w, fs, d.Severity, d.Code, d.Primary, d.Message, opts)
		if opts.Context {
			writeContext(w, fs, d.Primary)
		}
		for _, n := range d.Notes {
			writeHeading(w, fs, diag.SevInfo, d.Code, n.Span, n.Msg, opts)
			if opts.Context {
				writeContext(w, fs, n.Span)
			}
		}
	}
}

func writeHeading(w io.Writer, fs *source.FileSet, sev diag.Severity, code diag.Code, sp source.Span, msg string, opts PrettyOpts) {
	file := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)

	sevText := sev.String()
	if opts.Color {
		sevText = severityColor(sev).Sprint(sevText)
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", file.Path, start.Line, start.Col, sevText, code, msg)
}

// writeContext prints the first line the span covers and underlines the
// covered columns, using display widths so wide runes stay aligned.
func writeContext(w io.Writer, fs *source.FileSet, sp source.Span) {
	file := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	line := file.GetLine(start.Line)
	if line == "" {
		return
	}

	fmt.Fprintf(w, "  %s\n", line)

	// Columns are byte-based; clip them to the line before slicing.
	startByte := clip(int(start.Col)-1, len(line))
	endByte := clip(int(end.Col)-1, len(line))
	if end.Line != start.Line {
		endByte = len(line)
	}
	if endByte <= startByte {
		endByte = clip(startByte+1, len(line))
	}

	pad := runewidth.StringWidth(line[:startByte])
	width := runewidth.StringWidth(line[startByte:endByte])
	if width < 1 {
		width = 1
	}

	underline := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), underline)
}

func clip(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}
