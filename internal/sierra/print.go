package sierra

import (
	"fmt"
	"io"
	"strings"
)

// Print writes a textual rendering of the program: declaration tables
// first, then the indexed statement sequence, then entry points. Branch
// targets must already be resolved.
func Print(w io.Writer, p *Program) error {
	if w == nil || p == nil {
		return nil
	}

	for _, t := range p.Types {
		if _, err := fmt.Fprintf(w, "type %s = %s;\n", t.Name, t.Name); err != nil {
			return err
		}
	}
	if len(p.Types) > 0 {
		fmt.Fprintln(w)
	}

	for _, lf := range p.Libfuncs {
		if _, err := fmt.Fprintf(w, "libfunc %s = %s;\n", lf.Name, formatLongID(lf)); err != nil {
			return err
		}
	}
	if len(p.Libfuncs) > 0 {
		fmt.Fprintln(w)
	}

	for i := range p.Statements {
		if _, err := fmt.Fprintf(w, "%s; // %d\n", FormatStatement(&p.Statements[i]), i); err != nil {
			return err
		}
	}
	if len(p.Statements) > 0 {
		fmt.Fprintln(w)
	}

	for _, f := range p.Funcs {
		params := strings.Join(f.ParamTypes, ", ")
		rets := strings.Join(f.RetTypes, ", ")
		if _, err := fmt.Fprintf(w, "func %s@%d(%s) -> (%s);\n", f.Name, f.Entry, params, rets); err != nil {
			return err
		}
	}
	return nil
}

// FormatStatement renders one statement without its trailing index comment.
func FormatStatement(s *Statement) string {
	switch s.Kind {
	case StatementReturn:
		return fmt.Sprintf("return(%s)", formatVars(s.Return.Args))
	case StatementInvocation:
		inv := &s.Invocation
		args := formatVars(inv.Args)
		if len(inv.Branches) == 1 && inv.Branches[0].Target.Fallthrough {
			return fmt.Sprintf("%s(%s) -> (%s)", inv.Libfunc, args, formatVars(inv.Branches[0].Results))
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s(%s) {", inv.Libfunc, args)
		for i := range inv.Branches {
			br := &inv.Branches[i]
			if br.Target.Fallthrough {
				fmt.Fprintf(&b, " fallthrough(%s)", formatVars(br.Results))
			} else {
				fmt.Fprintf(&b, " %d(%s)", br.Target.Statement, formatVars(br.Results))
			}
		}
		b.WriteString(" }")
		return b.String()
	}
	return "<invalid>"
}

func formatLongID(lf LibfuncDeclaration) string {
	if len(lf.Args) == 0 {
		return lf.GenericID
	}
	parts := make([]string, 0, len(lf.Args))
	for _, a := range lf.Args {
		switch a.Kind {
		case ArgType:
			parts = append(parts, a.Type)
		case ArgValue:
			parts = append(parts, fmt.Sprintf("%d", a.Value))
		}
	}
	return fmt.Sprintf("%s<%s>", lf.GenericID, strings.Join(parts, ", "))
}

func formatVars(vars []VarID) string {
	parts := make([]string, 0, len(vars))
	for _, v := range vars {
		parts = append(parts, fmt.Sprintf("[%d]", v.ID))
	}
	return strings.Join(parts, ", ")
}
