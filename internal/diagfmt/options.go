package diagfmt

// PrettyOpts configures the human-readable diagnostic output.
type PrettyOpts struct {
	// Color enables ANSI colors for severities and carets.
	Color bool
	// Context enables printing the offending source line with a caret
	// underline.
	Context bool
}
