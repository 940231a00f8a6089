package composer

import "strings"

// CommitType is a conventional commit type label
type CommitType string

const (
	TypeFeat     CommitType = "feat"
	TypeFix      CommitType = "fix"
	TypeDocs     CommitType = "docs"
	TypeStyle    CommitType = "style"
	TypeRefactor CommitType = "refactor"
	TypeTest     CommitType = "test"
	TypeChore    CommitType = "chore"
	TypePerf     CommitType = "perf"
)

var commitTypes = []CommitType{
	TypeFeat, TypeFix, TypeDocs, TypeStyle, TypeRefactor, TypeTest, TypeChore, TypePerf,
}

var commitTypeDescriptions = map[CommitType]string{
	TypeFeat:     "A new feature",
	TypeFix:      "A bug fix",
	TypeDocs:     "Documentation changes",
	TypeStyle:    "Code style changes (formatting, etc)",
	TypeRefactor: "Code refactoring",
	TypeTest:     "Adding or updating tests",
	TypeChore:    "Maintenance tasks",
	TypePerf:     "Performance improvements",
}

// CommitTypes returns the valid commit types in their canonical order
func CommitTypes() []CommitType {
	out := make([]CommitType, len(commitTypes))
	copy(out, commitTypes)
	return out
}

// String returns the label
func (t CommitType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the known types
func (t CommitType) IsValid() bool {
	_, ok := commitTypeDescriptions[t]
	return ok
}

// Description returns a one-line description of the type
func (t CommitType) Description() string {
	return commitTypeDescriptions[t]
}

// ParseCommitType lower-cases s and maps anything unknown to chore
func ParseCommitType(s string) CommitType {
	t := CommitType(strings.ToLower(strings.TrimSpace(s)))
	if t.IsValid() {
		return t
	}
	return TypeChore
}

// Style selects a regeneration tone
type Style string

const (
	StyleConcise  Style = "concise"
	StyleDetailed Style = "detailed"
	StyleEmoji    Style = "emoji"
)

var styleDirectives = map[Style]string{
	StyleConcise:  "Be very brief and to the point",
	StyleDetailed: "Provide detailed explanation of changes",
	StyleEmoji:    "Use relevant emojis in the message",
}

// Styles returns the supported styles
func Styles() []Style {
	return []Style{StyleConcise, StyleDetailed, StyleEmoji}
}

// ParseStyle maps s to a Style; unknown values yield concise
func ParseStyle(s string) Style {
	st := Style(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := styleDirectives[st]; ok {
		return st
	}
	return StyleConcise
}

// Directive returns the instruction appended to the prompt
func (s Style) Directive() string {
	if d, ok := styleDirectives[s]; ok {
		return d
	}
	return styleDirectives[StyleConcise]
}

// GeneratedMessage is a parsed commit message
type GeneratedMessage struct {
	Type     CommitType `json:"type"`
	Subject  string     `json:"subject"`
	Body     string     `json:"body"`
	Message  string     `json:"message"`
	Fallback bool       `json:"fallback"`
}

// NewMessage builds a GeneratedMessage, normalising the type and rendering Message
func NewMessage(t CommitType, subject, body string) GeneratedMessage {
	if !t.IsValid() {
		t = TypeChore
	}
	return GeneratedMessage{
		Type:    t,
		Subject: subject,
		Body:    body,
		Message: Render(t, subject, body),
	}
}

// Render formats "{type}: {subject}" followed by a blank line and the body when present
func Render(t CommitType, subject, body string) string {
	title := string(t) + ": " + subject
	if body == "" {
		return title
	}
	return title + "\n\n" + body
}
