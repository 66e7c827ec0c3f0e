package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatLocationsText formats CLILocation results as "file:line:col" lines.
func formatLocationsText(w io.Writer, locs []CLILocation) {
	for _, loc := range locs {
		fmt.Fprintf(w, "%s:%d:%d\n", loc.File, loc.StartLine, loc.StartCol)
	}
}

// formatScopesText formats CLIScope results as aligned columns.
func formatScopesText(w io.Writer, scopes []CLIScope) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FQN\tKIND\tPARENT\tLINES")
	for _, sc := range scopes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d-%d\n",
			sc.FQN, sc.Kind, sc.ParentFQN, sc.StartLine, sc.EndLine)
	}
	tw.Flush()
}

// formatBindingsText formats CLIBinding results as aligned columns.
func formatBindingsText(w io.Writer, bindings []CLIBinding) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORD\tNAME\tFQN")
	for _, b := range bindings {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", b.Ord, b.Name, b.FQN)
	}
	tw.Flush()
}

// formatDefsText formats CLIDef results as aligned columns.
func formatDefsText(w io.Writer, defs []CLIDef) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FQN\tFILE\tLINE")
	for _, d := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", d.FQN, d.File, d.StartLine)
	}
	tw.Flush()
}

// formatRefsText formats CLIRef results as aligned columns.
func formatRefsText(w io.Writer, refs []CLIRef) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFILE\tLINE\tCOL")
	for _, r := range refs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", r.Name, r.File, r.StartLine, r.StartCol)
	}
	tw.Flush()
}

// formatFilesText formats CLIFile results as aligned columns.
func formatFilesText(w io.Writer, files []CLIFile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATH\tMODULE\tDIALECT")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", f.ID, f.Path, f.Module, f.Dialect)
	}
	tw.Flush()
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case []CLILocation:
		formatLocationsText(w, v)
	case []CLIScope:
		formatScopesText(w, v)
	case []CLIBinding:
		formatBindingsText(w, v)
	case []CLIDef:
		formatDefsText(w, v)
	case []CLIRef:
		formatRefsText(w, v)
	case []CLIFile:
		formatFilesText(w, v)
	case string:
		fmt.Fprintln(w, v)
	case nil:
		// No output for nil results (e.g., fqn with no match).
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
