package domain

import "strings"

// Section markers understood by SplitReply. The bracketed forms are the ones
// the reply prompt asks for and are searched first; the labeled forms and
// legacy synonyms cover models that paraphrase the format.
var (
	ReplyMarkers = []string{
		"[Reply]",
		"[返信]",
		"REPLY:",
		"Reply:",
		"reply:",
		"返信:",
		"返信：",
	}

	ExplanationMarkers = []string{
		"[Translation]",
		"[翻訳]",
		"[Explanation]",
		"[説明]",
		"TRANSLATION:",
		"Translation:",
		"translation:",
		"翻訳:",
		"翻訳：",
	}
)

// SplitReply separates a two-section model answer into the reply and its
// explanation. Without any marker the whole output is the reply and the
// explanation is empty. With only an explanation marker, the text before it
// is the reply.
func SplitReply(output string) (string, string) {
	text := strings.TrimSpace(output)

	replyStart, replyMarker := findFirstMarker(text, ReplyMarkers)
	explStart, explMarker := findFirstMarker(text, ExplanationMarkers)

	if replyStart < 0 && explStart < 0 {
		return text, ""
	}

	var reply, explanation string

	if replyStart >= 0 {
		bodyStart := replyStart + len(replyMarker)
		body := text[bodyStart:]
		end := len(body)
		if explStart >= bodyStart {
			end = explStart - bodyStart
		} else if next := nearestMarker(body, ExplanationMarkers); next >= 0 {
			end = next
		}
		reply = strings.TrimSpace(body[:end])
	}

	if explStart >= 0 {
		explanation = strings.TrimSpace(text[explStart+len(explMarker):])
		if replyStart < 0 {
			reply = strings.TrimSpace(text[:explStart])
		}
	}

	return reply, explanation
}

// findFirstMarker returns the position of the first marker in list order
// that occurs in text, so a preferred marker wins over an earlier loose one.
func findFirstMarker(text string, markers []string) (int, string) {
	for _, m := range markers {
		if pos := strings.Index(text, m); pos >= 0 {
			return pos, m
		}
	}
	return -1, ""
}

// nearestMarker returns the smallest position at which any marker occurs.
func nearestMarker(text string, markers []string) int {
	nearest := -1
	for _, m := range markers {
		if pos := strings.Index(text, m); pos >= 0 && (nearest < 0 || pos < nearest) {
			nearest = pos
		}
	}
	return nearest
}
