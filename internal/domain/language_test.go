package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/transly/internal/domain"
)

func TestParseLanguage(t *testing.T) {
	t.Run("should accept names and codes", func(t *testing.T) {
		for input, want := range map[string]domain.Language{
			"japanese": domain.LanguageJapanese,
			"Japanese": domain.LanguageJapanese,
			"ja":       domain.LanguageJapanese,
			"english":  domain.LanguageEnglish,
			" EN ":     domain.LanguageEnglish,
			"":         "",
		} {
			got, err := domain.ParseLanguage(input)
			require.NoError(t, err, input)
			require.Equal(t, want, got, input)
		}
	})

	t.Run("should reject unsupported languages", func(t *testing.T) {
		_, err := domain.ParseLanguage("french")
		require.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("should decode from JSON", func(t *testing.T) {
		var req domain.TranslationRequest
		require.NoError(t, json.Unmarshal([]byte(`{"text":"hi","sourceLang":"en","targetLang":"Japanese"}`), &req))
		require.Equal(t, domain.LanguageEnglish, req.SourceLang)
		require.Equal(t, domain.LanguageJapanese, req.TargetLang)

		require.Error(t, json.Unmarshal([]byte(`{"sourceLang":"de"}`), &req))
	})
}

func TestLanguage(t *testing.T) {
	require.Equal(t, "Japanese", domain.LanguageJapanese.Name())
	require.Equal(t, "en", domain.LanguageEnglish.Code())
	require.Equal(t, domain.LanguageEnglish, domain.LanguageJapanese.Opposite())
	require.Equal(t, domain.LanguageJapanese, domain.LanguageEnglish.Opposite())
	require.False(t, domain.Language("french").Valid())
}

func TestDetectLanguage(t *testing.T) {
	t.Run("should default empty text to japanese with zero confidence", func(t *testing.T) {
		result := domain.DetectLanguage("   ")

		require.Equal(t, domain.LanguageJapanese, result.Language)
		require.Zero(t, result.Confidence)
	})

	t.Run("should detect short japanese text", func(t *testing.T) {
		result := domain.DetectLanguage("こんにちは")

		require.Equal(t, domain.LanguageJapanese, result.Language)
		require.InDelta(t, 0.8, result.Confidence, 1e-9)
	})

	t.Run("should detect short english text", func(t *testing.T) {
		result := domain.DetectLanguage("Hello")

		require.Equal(t, domain.LanguageEnglish, result.Language)
		require.InDelta(t, 0.7, result.Confidence, 1e-9)
	})

	t.Run("should detect long japanese text", func(t *testing.T) {
		result := domain.DetectLanguage("来週の会議の資料を送付いたしますのでご確認ください。")

		require.Equal(t, domain.LanguageJapanese, result.Language)
		require.InDelta(t, 1.0, result.Confidence, 1e-9)
	})

	t.Run("should detect long english text", func(t *testing.T) {
		result := domain.DetectLanguage("Please find the meeting materials attached.")

		require.Equal(t, domain.LanguageEnglish, result.Language)
		require.InDelta(t, 1.0, result.Confidence, 1e-9)
	})

	t.Run("should treat mixed text with enough japanese as japanese", func(t *testing.T) {
		result := domain.DetectLanguage("Meeting is tomorrow 明日です")

		require.Equal(t, domain.LanguageJapanese, result.Language)
	})
}
