package lang

import "strings"

// Language represents supported output languages
type Language string

const (
	English            Language = "en"
	ChineseSimplified  Language = "zh"
	ChineseTraditional Language = "zh-tw"
	Japanese           Language = "ja"
	Korean             Language = "ko"
)

var aliases = map[string]Language{
	"english": English,
	"en-us":   English,
	"en-gb":   English,
	"zh-cn":   ChineseSimplified,
	"zh-hans": ChineseSimplified,
	"zh-hant": ChineseTraditional,
	"zh-hk":   ChineseTraditional,
	"ja-jp":   Japanese,
	"ko-kr":   Korean,
}

// String returns the string representation of the language
func (l Language) String() string {
	return string(l)
}

// IsValid checks if the language is valid
func (l Language) IsValid() bool {
	switch l {
	case English, ChineseSimplified, ChineseTraditional, Japanese, Korean:
		return true
	default:
		return false
	}
}

// DisplayName returns the native name of the language
func (l Language) DisplayName() string {
	switch l {
	case English:
		return "English"
	case ChineseSimplified:
		return "中文（简体）"
	case ChineseTraditional:
		return "中文（繁體）"
	case Japanese:
		return "日本語"
	case Korean:
		return "한국어"
	default:
		return string(l)
	}
}

// PromptName returns the English name used when instructing a model
func (l Language) PromptName() string {
	switch l {
	case ChineseSimplified:
		return "Simplified Chinese"
	case ChineseTraditional:
		return "Traditional Chinese"
	case Japanese:
		return "Japanese"
	case Korean:
		return "Korean"
	default:
		return "English"
	}
}

// DefaultLanguage returns the default language
func DefaultLanguage() Language {
	return English
}

// ParseLanguage parses a language code, case-insensitively and accepting
// common regional aliases. Unknown codes yield English.
func ParseLanguage(s string) Language {
	code := strings.ToLower(strings.TrimSpace(s))
	if l := Language(code); l.IsValid() {
		return l
	}
	if l, ok := aliases[code]; ok {
		return l
	}
	return DefaultLanguage()
}

// SupportedLanguages returns all supported languages
func SupportedLanguages() []Language {
	return []Language{English, ChineseSimplified, ChineseTraditional, Japanese, Korean}
}
