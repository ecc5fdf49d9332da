package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/tuannvm/fileaudit/internal/audit"
)

//go:embed templates/*.md
var embeddedTemplates embed.FS

// Format is an output format for reports.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatTable}

// ParseFormat validates a format name. "md" and "yml" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "table":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown report format %q (valid: json, yaml, markdown, table)", s)
}

// Extension returns the file extension used when a report is written to disk.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatMarkdown:
		return ".md"
	case FormatTable:
		return ".txt"
	default:
		return ".json"
	}
}

// Renderer renders reports. Markdown templates are looked up in
// templatesDir first and fall back to the embedded defaults.
type Renderer struct {
	templatesDir string
}

// NewRenderer creates a renderer. templatesDir may be empty.
func NewRenderer(templatesDir string) *Renderer {
	return &Renderer{templatesDir: templatesDir}
}

// Render writes r to w in the given format.
func (rn *Renderer) Render(w io.Writer, r Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		out, err := rn.Markdown(r)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatTable:
		_, err := io.WriteString(w, Table(r))
		return err
	}
	return fmt.Errorf("unknown report format %q", format)
}

// Markdown renders the "report" template.
func (rn *Renderer) Markdown(r Report) (string, error) {
	src, err := rn.Template("report")
	if err != nil {
		return "", err
	}

	// missingkey=error catches typos in custom templates
	tmpl, err := template.New("report").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"join":       strings.Join,
			"upper":      strings.ToUpper,
			"formatSize": audit.FormatSize,
			"ms":         formatMillis,
		}).Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render report template: %w", err)
	}
	return buf.String(), nil
}

// Template loads a named template, preferring templatesDir over the
// embedded copy.
func (rn *Renderer) Template(name string) (string, error) {
	if rn.templatesDir != "" {
		if content, err := os.ReadFile(filepath.Join(rn.templatesDir, name+".md")); err == nil {
			return string(content), nil
		}
	}

	content, err := embeddedTemplates.ReadFile("templates/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("no report template named %s", name)
	}
	return string(content), nil
}

// ExportTemplates copies the embedded templates into dir so they can be
// customised. Existing files are left untouched.
func ExportTemplates(dir string) ([]string, error) {
	entries, err := embeddedTemplates.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create templates directory: %w", err)
	}

	var written []string
	for _, entry := range entries {
		dest := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(dest); err == nil {
			continue
		}
		content, err := embeddedTemplates.ReadFile("templates/" + entry.Name())
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(dest, content, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", dest, err)
		}
		written = append(written, dest)
	}
	return written, nil
}

func formatMillis(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}
