package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

const (
	// MaxCodeChars is how much of the submitted code is forwarded to the provider.
	MaxCodeChars = 2000

	DefaultCodeName = "component.tsx"
	noCodeProvided  = "No code provided"
)

const diagnosisPromptTemplate = `You are Context Clue, an AI debugging assistant that analyzes UI bugs.
The user uploaded a screenshot showing a visual bug and the following code file ({{.CodeName}}):

` + "```" + `
{{.CodeContent}}
` + "```" + `

Based on common UI bugs ({{.Categories}}):

Return ONLY a valid JSON object:
{
  "bugLocation": "Line X in filename",
  "confidence": number (1-100),
  "suggestion": "One sentence explaining what's wrong visually",
  "fix": "One sentence explaining the fix",
  "before": "the line of code that's wrong",
  "after": "the corrected line of code"
}`

// BugCategories are the classes of visual bug the model is asked to look for.
var BugCategories = []string{
	"z-index issues",
	"flexbox misalignment",
	"overflow hidden",
	"missing responsive breakpoints",
	"color contrast problems",
}

// PromptData holds the parameters for template rendering
type PromptData struct {
	CodeName    string
	CodeContent string
	Categories  string
}

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

// BuildPrompt renders the diagnosis instruction for a code file, keeping at most
// MaxCodeChars characters of its content.
func BuildPrompt(codeContent, codeName string) string {
	return BuildPromptWithLimit(codeContent, codeName, MaxCodeChars)
}

// BuildPromptWithLimit is BuildPrompt with a caller-chosen truncation limit.
// A limit <= 0 means MaxCodeChars.
func BuildPromptWithLimit(codeContent, codeName string, limit int) string {
	if limit <= 0 {
		limit = MaxCodeChars
	}
	if strings.TrimSpace(codeName) == "" {
		codeName = DefaultCodeName
	}

	code := TruncateRunes(codeContent, limit)
	if code == "" {
		code = noCodeProvided
	}

	prompt, err := RenderPrompt("diagnosis", diagnosisPromptTemplate, PromptData{
		CodeName:    codeName,
		CodeContent: code,
		Categories:  strings.Join(BugCategories, ", "),
	})
	if err != nil {
		// the template is a constant, so this only fires on a programming error
		panic(err)
	}
	return prompt
}

// TruncateRunes returns the first n characters of s without splitting a UTF-8 sequence.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
