// Package diagnostics inspects strategy source code for console output left behind from
// debugging. It is advisory: findings never change an evaluation result.
package diagnostics

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"strconv"
	"strings"
)

// Finding is one source line that writes to the console.
type Finding struct {
	Line int
	Text string
}

// Report is the outcome of scanning one function.
type Report struct {
	Function string
	Missing  bool
	Findings []Finding
}

// Clean reports whether the function exists and prints nothing.
func (r Report) Clean() bool {
	return !r.Missing && len(r.Findings) == 0
}

// Message renders the report for the submitter, one line per finding. It is empty when Clean.
func (r Report) Message() string {
	if r.Missing {
		return fmt.Sprintf("Function %s() is missing from this code", r.Function)
	}
	var b strings.Builder
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "Please remove or comment out the print statement in your %s() function code before submission: %s\n", r.Function, f.Text)
	}
	return b.String()
}

var (
	printFuncs  = map[string]bool{"Print": true, "Printf": true, "Println": true}
	fprintFuncs = map[string]bool{"Fprint": true, "Fprintf": true, "Fprintln": true}
	logFuncs    = map[string]bool{
		"Print": true, "Printf": true, "Println": true,
		"Fatal": true, "Fatalf": true, "Fatalln": true,
		"Panic": true, "Panicf": true, "Panicln": true,
	}
	streamWrites = map[string]bool{"Write": true, "WriteString": true}
)

// Scan parses src and reports every line of the named function (or method) that writes
// to standard output or standard error. A trailing "()" on function is ignored.
func Scan(filename string, src []byte, function string) (Report, error) {
	function = strings.TrimSuffix(strings.TrimSpace(function), "()")
	report := Report{Function: function}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return Report{}, fmt.Errorf("parse %s: %w", filename, err)
	}

	decl := findFunc(file, function)
	if decl == nil || decl.Body == nil {
		report.Missing = true
		return report, nil
	}

	imports := importNames(file)
	lines := bytes.Split(src, []byte("\n"))
	seen := make(map[int]bool)

	ast.Inspect(decl.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || !writesToConsole(call, imports) {
			return true
		}
		line := fset.Position(call.Pos()).Line
		if seen[line] || line < 1 || line > len(lines) {
			return true
		}
		seen[line] = true
		report.Findings = append(report.Findings, Finding{
			Line: line,
			Text: strings.TrimSpace(string(lines[line-1])),
		})
		return true
	})

	return report, nil
}

func findFunc(file *ast.File, name string) *ast.FuncDecl {
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Name.Name == name {
			return fn
		}
	}
	return nil
}

// importNames maps the local name of every import to its path.
func importNames(file *ast.File) map[string]string {
	names := make(map[string]string, len(file.Imports))
	for _, spec := range file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := path.Base(p)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		names[name] = p
	}
	return names
}

func writesToConsole(call *ast.CallExpr, imports map[string]string) bool {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		return fun.Name == "print" || fun.Name == "println"
	case *ast.SelectorExpr:
		if pkg, ok := fun.X.(*ast.Ident); ok {
			switch imports[pkg.Name] {
			case "fmt":
				if printFuncs[fun.Sel.Name] {
					return true
				}
				return fprintFuncs[fun.Sel.Name] && len(call.Args) > 0 && isStdStream(call.Args[0], imports)
			case "log":
				return logFuncs[fun.Sel.Name]
			}
			return false
		}
		return streamWrites[fun.Sel.Name] && isStdStream(fun.X, imports)
	}
	return false
}

func isStdStream(expr ast.Expr, imports map[string]string) bool {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || imports[pkg.Name] != "os" {
		return false
	}
	return sel.Sel.Name == "Stdout" || sel.Sel.Name == "Stderr"
}
