package composer

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/huimingz/commit-composer/pkg/lang"
)

// MaxDiffRunes is how much of the diff is sent to the model
const MaxDiffRunes = 3000

// commitPrompt is the message sent to the model
const commitPrompt = `You are an expert at writing clear, concise git commit messages following conventional commits format.

Analyze this git diff and generate a commit message.

**Files changed:**
{{range .Files}}- {{.}}
{{end}}
**Diff:**
` + "```" + `
{{.Diff}}
` + "```" + `

**Instructions:**
1. Choose the appropriate type: {{.Types}}
2. Write a short, clear subject line (50 chars max)
3. Add a body explaining WHAT changed and WHY (if significant changes)
4. Use present tense ("add" not "added")
{{- if .Language}}
5. Write the subject and body in {{.Language}}; keep the TYPE label in English
{{- end}}

**Format your response EXACTLY like this:**
TYPE: [type]
SUBJECT: [subject line]
BODY: [optional body, can be empty]

Example:
TYPE: feat
SUBJECT: add user authentication system
BODY: Implement JWT-based authentication with login and registration endpoints. This provides secure user access control for the application.
`

var promptTemplate = template.Must(template.New("commit_prompt").Parse(commitPrompt))

// PromptData is the input of BuildPrompt
type PromptData struct {
	Diff     string
	Files    []string
	Language string // language code; empty or English adds no language line
	Style    Style  // empty adds no style line
}

// BuildPrompt renders the prompt for the given change set
func BuildPrompt(data PromptData) string {
	labels := make([]string, len(commitTypes))
	for i, t := range commitTypes {
		labels[i] = string(t)
	}

	var language string
	if data.Language != "" {
		if l := lang.ParseLanguage(data.Language); l != lang.English {
			language = l.PromptName()
		}
	}

	view := struct {
		Diff     string
		Files    []string
		Types    string
		Language string
	}{
		Diff:     truncateRunes(data.Diff, MaxDiffRunes),
		Files:    data.Files,
		Types:    strings.Join(labels, ", "),
		Language: language,
	}

	var buf bytes.Buffer
	// Execute only fails on writer errors
	_ = promptTemplate.Execute(&buf, view)

	if data.Style != "" {
		buf.WriteString("\n\nSTYLE: ")
		buf.WriteString(data.Style.Directive())
	}
	return buf.String()
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
