package extract

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// builtinTemplate is the last-resort prompt used when neither the
// requested template nor standard.txt exists on disk.
const builtinTemplate = `System: You are an expert RFP analyzer. Extract information from the RFP and return it ONLY as a valid JSON object.

Documents:
{{range .Documents}}{{.}}

{{end}}
Question: {{.Query}}

Return a JSON object with key information from the RFP.
`

// PromptData is what extraction templates render against.
type PromptData struct {
	Documents []string
	Query     string
}

// TemplateLoader resolves extraction templates with a three-tier
// fallback: requested type, then standard.txt, then a built-in prompt.
// A missing template file is never fatal.
type TemplateLoader struct {
	dir    string
	logger *log.Logger
}

func NewTemplateLoader(dir string, logger *log.Logger) *TemplateLoader {
	return &TemplateLoader{
		dir:    dir,
		logger: logger,
	}
}

// Load returns the raw template text for the given type.
func (l *TemplateLoader) Load(templateType string) string {
	path := filepath.Join(l.dir, fmt.Sprintf("%s.txt", templateType))
	if content, err := os.ReadFile(path); err == nil {
		l.logger.Printf("[INFO] Loaded template from %s", path)
		return string(content)
	}

	l.logger.Printf("[WARN] Template %s not found. Using standard template.", templateType)
	standardPath := filepath.Join(l.dir, "standard.txt")
	if content, err := os.ReadFile(standardPath); err == nil {
		return string(content)
	}

	l.logger.Printf("[ERROR] Standard template not found at %s. Using built-in fallback.", standardPath)
	return builtinTemplate
}

// RenderPrompt fills a template with retrieved documents and the
// extraction query.
func RenderPrompt(templateText string, documents []string, query string) (string, error) {
	tmpl, err := template.New("extraction").Parse(templateText)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, PromptData{Documents: documents, Query: query}); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return sb.String(), nil
}
