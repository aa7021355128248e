package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Language is a supported translation language.
// The zero value means "not specified" and triggers detection.
type Language string

const (
	LanguageJapanese Language = "japanese"
	LanguageEnglish  Language = "english"
)

// Name returns the canonical display name used inside prompts.
func (l Language) Name() string {
	switch l {
	case LanguageJapanese:
		return "Japanese"
	case LanguageEnglish:
		return "English"
	default:
		return string(l)
	}
}

// Code returns the ISO 639-1 code.
func (l Language) Code() string {
	switch l {
	case LanguageJapanese:
		return "ja"
	case LanguageEnglish:
		return "en"
	default:
		return ""
	}
}

// Opposite returns the other language of the supported pair.
func (l Language) Opposite() Language {
	if l == LanguageJapanese {
		return LanguageEnglish
	}
	return LanguageJapanese
}

// Valid reports whether l is a member of the supported set.
func (l Language) Valid() bool {
	return l == LanguageJapanese || l == LanguageEnglish
}

// ParseLanguage accepts a backend name ("japanese"), a code ("ja") or a
// display name ("Japanese"). An empty input returns the zero Language.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "japanese", "ja", "jp":
		return LanguageJapanese, nil
	case "english", "en":
		return LanguageEnglish, nil
	default:
		return "", fmt.Errorf("%w: unsupported language %q", ErrInvalidRequest, s)
	}
}

// UnmarshalText lets Language be decoded from JSON strings and env values.
func (l *Language) UnmarshalText(text []byte) error {
	parsed, err := ParseLanguage(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// DetectionResult is the outcome of DetectLanguage.
type DetectionResult struct {
	Language   Language `json:"language"`
	Confidence float64  `json:"confidence"`
}

const (
	shortTextRunes       = 10
	japaneseRatioCutoff  = 0.1
	shortTextMaxJPConf   = 0.8
	shortTextEnglishConf = 0.7
)

// DetectLanguage classifies text as Japanese or English from the share of
// Japanese script characters. Empty text defaults to Japanese with zero
// confidence, so the default direction is Japanese to English.
func DetectLanguage(text string) DetectionResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return DetectionResult{Language: LanguageJapanese, Confidence: 0}
	}

	ratio := japaneseRatio(trimmed)

	if len([]rune(trimmed)) < shortTextRunes {
		if ratio > 0 {
			return DetectionResult{
				Language:   LanguageJapanese,
				Confidence: min(shortTextMaxJPConf, 0.5+ratio*0.5),
			}
		}
		return DetectionResult{Language: LanguageEnglish, Confidence: shortTextEnglishConf}
	}

	if ratio >= japaneseRatioCutoff {
		return DetectionResult{Language: LanguageJapanese, Confidence: min(1.0, 0.5+ratio)}
	}
	return DetectionResult{Language: LanguageEnglish, Confidence: min(1.0, 0.6+(1-ratio)*0.4)}
}

// japaneseRatio returns the share of non-space runes that belong to a
// Japanese script block.
func japaneseRatio(text string) float64 {
	var total, jp int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isJapaneseRune(r) {
			jp++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(jp) / float64(total)
}

func isJapaneseRune(r rune) bool {
	switch {
	case r >= 0x3040 && r <= 0x309F: // hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // katakana
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	case r >= 0x3000 && r <= 0x303F: // CJK punctuation
		return true
	case r >= 0xFF65 && r <= 0xFF9F: // half-width katakana
		return true
	default:
		return false
	}
}
