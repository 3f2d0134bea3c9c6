// Package utcdate reports wall-clock reads and date constructions that are not
// pinned to UTC. Due dates are compared as UTC midnights, so a local time
// leaking into the domain shifts them by a day near midnight.
//
// Two patterns are reported:
//
//	time.Now()             // must be followed by .UTC()
//	time.Date(..., loc)    // loc must be time.UTC
//
// A //nolint or //nolint:utcdate comment on the same or the previous line
// suppresses the report.
package utcdate

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer is the utcdate analyzer.
var Analyzer = &analysis.Analyzer{
	Name: "utcdate",
	Doc:  "checks that time.Now() and time.Date() produce UTC values",
	Run:  run,
}

const (
	msgNow  = "time.Now() should be followed by .UTC()"
	msgDate = "time.Date() should use time.UTC as its location"
)

func run(pass *analysis.Pass) (any, error) {
	for _, file := range pass.Files {
		// time.Now() calls that are the receiver of .UTC()
		converted := make(map[*ast.CallExpr]bool)
		ast.Inspect(file, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok || sel.Sel.Name != "UTC" {
				return true
			}
			if call, ok := sel.X.(*ast.CallExpr); ok && isTimeCall(call, "Now") {
				converted[call] = true
			}
			return true
		})

		nolint := nolintLines(pass, file)

		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			var msg string
			switch {
			case isTimeCall(call, "Now") && !converted[call]:
				msg = msgNow
			case isTimeCall(call, "Date") && !isUTCArg(call):
				msg = msgDate
			default:
				return true
			}

			line := pass.Fset.Position(call.Pos()).Line
			if nolint[line] || nolint[line-1] {
				return true
			}
			pass.Reportf(call.Pos(), "%s", msg)
			return true
		})
	}

	return nil, nil
}

// isTimeCall reports whether call is time.<name>(...).
func isTimeCall(call *ast.CallExpr, name string) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != name {
		return false
	}
	ident, ok := sel.X.(*ast.Ident)
	return ok && ident.Name == "time"
}

// isUTCArg reports whether the last argument of a time.Date call is time.UTC.
// A call with the wrong arity is left to the compiler.
func isUTCArg(call *ast.CallExpr) bool {
	if len(call.Args) != 8 {
		return true
	}
	sel, ok := call.Args[7].(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "UTC" {
		return false
	}
	ident, ok := sel.X.(*ast.Ident)
	return ok && ident.Name == "time"
}

// nolintLines returns the lines of file carrying a nolint directive for this analyzer.
func nolintLines(pass *analysis.Pass, file *ast.File) map[int]bool {
	lines := make(map[int]bool)
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
			if !strings.HasPrefix(text, "nolint") {
				continue
			}
			directive, _, _ := strings.Cut(text, " ")
			if directive == "nolint" || strings.Contains(directive, "utcdate") {
				lines[pass.Fset.Position(c.Pos()).Line] = true
			}
		}
	}
	return lines
}
