package domain

import "strings"

// quoteGlyphs are stripped once from each end of the output, in this order.
var quoteGlyphs = []string{`"`, "「", "」", "『", "』", "'"}

// labelPrefixes are matched case-insensitively; only the first hit is removed.
var labelPrefixes = []string{
	"translation:",
	"translated text:",
	"here is the translation:",
	"the translation is:",
	"summary:",
	"翻訳結果:",
	"翻訳:",
	"翻訳：",
	"訳文:",
	"訳:",
	"要約:",
	"要約：",
	"english:",
	"japanese:",
	"日本語:",
	"英語:",
}

const echoSeparator = "\n\n"

// Clean strips wrapping quotes, label prefixes and echoed source text from
// model output. Steps run once each, in order.
func Clean(output, source string) string {
	result := strings.TrimSpace(output)
	result = stripQuotes(result)
	result = stripLabel(result)
	result = stripEchoedBlock(result, source)
	result = stripEchoedPrefix(result, source)
	return result
}

func stripQuotes(s string) string {
	for _, q := range quoteGlyphs {
		if strings.HasPrefix(s, q) {
			s = strings.TrimSpace(strings.TrimPrefix(s, q))
		}
		if strings.HasSuffix(s, q) {
			s = strings.TrimSpace(strings.TrimSuffix(s, q))
		}
	}
	return s
}

func stripLabel(s string) string {
	for _, prefix := range labelPrefixes {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			return strings.TrimSpace(s[len(prefix):])
		}
	}
	return s
}

// stripEchoedBlock drops a leading paragraph that repeats the source text.
func stripEchoedBlock(s, source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return s
	}

	pos := strings.Index(s, echoSeparator)
	if pos <= 0 {
		return s
	}

	head := s[:pos]
	rest := strings.TrimSpace(s[pos+len(echoSeparator):])
	if rest == "" {
		return s
	}
	if strings.Contains(head, source) || strings.Contains(source, head) {
		return rest
	}
	return s
}

// stripEchoedPrefix keeps output that is nothing but the source: names,
// numbers and loanwords often translate to themselves.
func stripEchoedPrefix(s, source string) string {
	source = strings.TrimSpace(source)
	if source == "" || !strings.HasPrefix(s, source) {
		return s
	}

	rest := strings.TrimSpace(s[len(source):])
	if rest == "" {
		return s
	}
	return rest
}
