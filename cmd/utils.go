package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/trevor-scheer/gqlscope/pkg/config"
	"github.com/trevor-scheer/gqlscope/pkg/diagnostic"
	"github.com/trevor-scheer/gqlscope/pkg/loader"
	"github.com/trevor-scheer/gqlscope/pkg/project"
	"github.com/trevor-scheer/gqlscope/pkg/source"
)

var tableStyle = lipgloss.NewStyle().PaddingRight(1)

func makeTable() *table.Table {
	return table.New().
		Width(120).
		Wrap(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			return tableStyle
		})
}

const maxSuggestionDistance = 5

func findClosest(input string, candidates []string) string {
	minDist := -1
	closest := ""
	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(input, c)
		if minDist == -1 || dist < minDist {
			minDist = dist
			closest = c
		}
	}
	if minDist > maxSuggestionDistance {
		return ""
	}
	return closest
}

// loadConfigForCli resolves the config file from the -c flag or by walking
// up from the current directory.
func loadConfigForCli() (*config.Config, error) {
	path := configFilePath
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			if errors.Is(err, config.ErrNotFound) {
				return nil, fmt.Errorf("no graphql config file found; create a .graphqlrc.yml or pass one with -c")
			}
			return nil, err
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		return nil, err
	}
	return cfg, nil
}

// loadProjectForCli builds the selected project with its schema and
// documents loaded from disk.
func loadProjectForCli() (*project.Project, error) {
	cfg, err := loadConfigForCli()
	if err != nil {
		return nil, err
	}
	p, err := loader.LoadProject(cfg, projectName)
	if err != nil {
		if projectName != "" {
			var names []string
			for name := range cfg.Projects {
				names = append(names, name)
			}
			if suggestion := findClosest(projectName, names); suggestion != "" {
				return nil, fmt.Errorf("%w, did you mean '%s'?", err, suggestion)
			}
		}
		return nil, err
	}
	return p, nil
}

// parseFileLineCol parses a position argument of the form file:line:column.
// Line is 1-based and column is 0-based, matching the coordinates printed
// by every command.
func parseFileLineCol(arg string) (string, source.Position, error) {
	last := strings.LastIndex(arg, ":")
	if last <= 0 {
		return "", source.Position{}, fmt.Errorf("invalid position %q (expected file:line:column)", arg)
	}
	prev := strings.LastIndex(arg[:last], ":")
	if prev <= 0 {
		return "", source.Position{}, fmt.Errorf("invalid position %q (expected file:line:column)", arg)
	}
	line, err := strconv.Atoi(arg[prev+1 : last])
	if err != nil || line < 1 {
		return "", source.Position{}, fmt.Errorf("invalid line in %q", arg)
	}
	col, err := strconv.Atoi(arg[last+1:])
	if err != nil || col < 0 {
		return "", source.Position{}, fmt.Errorf("invalid column in %q", arg)
	}
	return arg[:prev], source.Position{Line: line, Column: col}, nil
}

func diagnosticInfo(d project.Diagnostic) DiagnosticInfo {
	return DiagnosticInfo{
		Severity:  d.Severity.String(),
		File:      d.Location.File,
		Line:      d.Location.Start.Line,
		Column:    d.Location.Start.Column,
		EndLine:   d.Location.End.Line,
		EndColumn: d.Location.End.Column,
		Message:   d.Message,
		Code:      d.Code,
	}
}

func locationInfo(l source.Location) LocationInfo {
	return LocationInfo{File: l.File, Line: l.Start.Line, Column: l.Start.Column}
}

func formatDiagnosticText(d DiagnosticInfo) string {
	out := fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
	if d.Code != "" {
		out += fmt.Sprintf(" [%s]", d.Code)
	}
	return out
}

// formatDiagnosticCI emits a GitHub Actions workflow command so the finding
// becomes a PR annotation.
func formatDiagnosticCI(d DiagnosticInfo) string {
	level := "error"
	if d.Severity != "error" {
		level = "warning"
	}
	// Annotations use 1-based columns.
	return fmt.Sprintf("::%s file=%s,line=%d,col=%d::%s", level, d.File, d.Line, d.Column+1, d.Message)
}

func snippetSeverity(s string) diagnostic.Severity {
	switch s {
	case "warning":
		return diagnostic.SeverityWarning
	case "information":
		return diagnostic.SeverityInfo
	default:
		return diagnostic.SeverityError
	}
}

// formatDiagnosticsPretty renders each finding with its source line and an
// underline spanning the reported range. Files that cannot be re-read fall
// back to the plain text form.
func formatDiagnosticsPretty(diags []DiagnosticInfo) string {
	lineCache := make(map[string][]string)
	sourceLine := func(file string, line int) (string, bool) {
		lines, ok := lineCache[file]
		if !ok {
			data, err := os.ReadFile(file)
			if err != nil {
				lineCache[file] = nil
				return "", false
			}
			lines = strings.Split(string(data), "\n")
			lineCache[file] = lines
		}
		if lines == nil || line < 1 || line > len(lines) {
			return "", false
		}
		return lines[line-1], true
	}

	var out []string
	for _, d := range diags {
		text, ok := sourceLine(d.File, d.Line)
		if !ok {
			out = append(out, formatDiagnosticText(d))
			continue
		}
		length := 1
		if d.EndLine == d.Line && d.EndColumn > d.Column {
			length = d.EndColumn - d.Column
		}
		label := d.Message
		if d.Code != "" {
			label += fmt.Sprintf(" [%s]", d.Code)
		}
		block := diagnostic.RenderLocation(d.File, d.Line, d.Column) + "\n" +
			diagnostic.RenderSnippet(text, d.Line, d.Column+1, length, label, snippetSeverity(d.Severity))
		out = append(out, block)
	}
	return strings.Join(out, "\n\n")
}
