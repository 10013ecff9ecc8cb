package domain

import (
	"fmt"
	"strings"
)

// Language identifies the implementation language of the candidate compiler.
// The set is closed: dispatching code switches exhaustively over these values.
type Language int

const (
	LanguageJava Language = iota
	LanguageC
	LanguageCpp
)

// ParseLanguage maps a declared language string to a Language value.
// Unknown strings are an error, never a silent default.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "java":
		return LanguageJava, nil
	case "c":
		return LanguageC, nil
	case "cpp", "c++":
		return LanguageCpp, nil
	default:
		return 0, fmt.Errorf("unsupported language %q, supported: java, c, cpp", s)
	}
}

func (l Language) String() string {
	switch l {
	case LanguageJava:
		return "java"
	case LanguageC:
		return "c"
	case LanguageCpp:
		return "cpp"
	default:
		return fmt.Sprintf("Language(%d)", int(l))
	}
}
