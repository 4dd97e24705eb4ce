package util

import (
	"bytes"
	"strings"
	"text/template"
)

// RenderTemplate expands {{.Key}} markers in a prompt template from the given
// state map. Text without markers is returned unchanged without parsing.
// Missing keys are an error rather than rendering as "<no value>".
func RenderTemplate(text string, state map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, state); err != nil {
		return "", err
	}

	return buf.String(), nil
}
