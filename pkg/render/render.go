package render

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatText   Format = "text"
	FormatPretty Format = "pretty"
	// FormatCI emits GitHub Actions workflow commands so findings surface
	// as annotations on pull requests.
	FormatCI Format = "ci"
)

var ValidFormats = []Format{FormatJSON, FormatText, FormatPretty, FormatCI}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	case "pretty":
		return FormatPretty, nil
	case "ci":
		return FormatCI, nil
	default:
		return "", fmt.Errorf("invalid format: %s (valid: json, text, pretty, ci)", s)
	}
}

type Renderer[T any] struct {
	Data         []T
	TextFormat   func(T) string
	PrettyFormat func([]T) string
	CIFormat     func(T) string
}

func (r Renderer[T]) Render(format Format) (string, error) {
	switch format {
	case FormatJSON:
		return r.renderJSON()
	case FormatPretty:
		return r.renderPretty()
	case FormatText:
		return r.renderText()
	case FormatCI:
		return r.renderCI()
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (r Renderer[T]) renderPretty() (string, error) {
	if r.PrettyFormat == nil {
		return "", fmt.Errorf("pretty format not defined for this type")
	}
	return r.PrettyFormat(r.Data), nil
}

func (r Renderer[T]) renderJSON() (string, error) {
	bytes, err := json.MarshalIndent(r.Data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (r Renderer[T]) renderText() (string, error) {
	if r.TextFormat == nil {
		return "", fmt.Errorf("text format not defined for this type")
	}

	var lines []string
	for _, item := range r.Data {
		lines = append(lines, r.TextFormat(item))
	}
	return strings.Join(lines, "\n"), nil
}

func (r Renderer[T]) renderCI() (string, error) {
	if r.CIFormat == nil {
		return "", fmt.Errorf("ci format not defined for this type")
	}

	var lines []string
	for _, item := range r.Data {
		lines = append(lines, r.CIFormat(item))
	}
	return strings.Join(lines, "\n"), nil
}
