package domain

import "fmt"

// Task selects the prompt family.
type Task string

const (
	TaskTranslate Task = "translate"
	TaskSummarize Task = "summarize"
	// TaskReply asks for a reply plus its translation in two labeled sections.
	TaskReply Task = "reply"
	// TaskReplyOnly asks for the reply alone.
	TaskReplyOnly Task = "reply-only"
)

// ReplyMode decides what ReplyResult.Explanation holds.
type ReplyMode string

const (
	// ReplyModeBilingual fills Explanation with the reply rendered in the
	// explanation language, parsed from a two-section model answer.
	ReplyModeBilingual ReplyMode = "bilingual"
	// ReplyModeMirror copies Reply into Explanation; translation of the reply
	// is left to the caller.
	ReplyModeMirror ReplyMode = "mirror"
)

// Task returns the prompt family used by the mode.
func (m ReplyMode) Task() Task {
	if m == ReplyModeMirror {
		return TaskReplyOnly
	}
	return TaskReply
}

type translationKey struct {
	kind   ModelKind
	source Language
	target Language
}

var translationTemplates = map[translationKey]string{
	{ModelKindSpecializedTranslation, LanguageJapanese, LanguageEnglish}: "Translate the following Japanese text to English:\n%s",
	{ModelKindSpecializedTranslation, LanguageEnglish, LanguageJapanese}: "以下の英文を日本語に翻訳してください:\n%s",
	{ModelKindGeneralPurpose, LanguageJapanese, LanguageEnglish}:         "Translate the following Japanese text to English. Output only the translation.\n%s",
	{ModelKindGeneralPurpose, LanguageEnglish, LanguageJapanese}:         "以下の英文を日本語に翻訳してください。翻訳文のみを出力してください。\n%s",
}

const genericTranslationTemplate = "Translate from %s to %s:\n%s"

var summarizeTemplates = map[Language]string{
	LanguageJapanese: "以下の日本語テキストを3文以内で日本語で要約してください。要約のみを出力してください。\n\n%s",
	LanguageEnglish:  "Summarize the following English text in 3 sentences or less in English. Output only the summary.\n\n%s",
}

var replyOnlyTemplates = map[Language]string{
	LanguageJapanese: "以下のメッセージに対して、丁寧なビジネスメールの返信を日本語で書いてください。返信のみを出力してください。\n\n%s",
	LanguageEnglish:  "Write a polite business email reply to the following message in English. Output only the reply.\n\n%s",
}

// Reply templates take (text) and embed the section markers recognized by SplitReply.
var replyTemplates = map[Language]string{
	LanguageJapanese: "以下のメッセージに対して、丁寧なビジネスメールの返信を日本語で書いてください。" +
		"続けて、その返信を英語に翻訳してください。\n" +
		"必ず次の形式で出力し、それ以外は何も書かないでください:\n" +
		"[返信]\n(日本語の返信)\n[翻訳]\n(返信の英訳)\n\nメッセージ:\n%s",
	LanguageEnglish: "Write a polite business email reply to the following message in English. " +
		"Then translate your reply into Japanese.\n" +
		"Use exactly this format and write nothing else:\n" +
		"[Reply]\n(the reply in English)\n[Translation]\n(the Japanese translation of the reply)\n\nMessage:\n%s",
}

var systemMessages = map[Task]map[Language]string{
	TaskSummarize: {
		LanguageJapanese: "あなたは日本語の要約専門家です。必ず日本語でのみ応答してください。絶対に英語に翻訳しないでください。",
		LanguageEnglish:  "You are an English summarization expert. You MUST respond in English only. DO NOT translate to Japanese.",
	},
	TaskReply: {
		LanguageJapanese: "あなたはビジネスメールの返信作成専門家です。返信は必ず日本語で作成してください。",
		LanguageEnglish:  "You are a business email reply expert. You MUST write the reply in English.",
	},
	TaskReplyOnly: {
		LanguageJapanese: "あなたはビジネスメールの返信作成専門家です。必ず日本語でのみ返信を作成してください。",
		LanguageEnglish:  "You are a business email reply expert. You MUST write the reply in English only.",
	},
}

// BuildPrompt renders the user message for a task.
//
// For TaskTranslate the text is translated from source to target. For
// TaskSummarize the summary is written in target, which is also the input
// language. For the reply tasks target is the reply language.
func BuildPrompt(task Task, text string, source, target Language, profile ModelProfile) string {
	switch task {
	case TaskSummarize:
		if tpl, ok := summarizeTemplates[target]; ok {
			return fmt.Sprintf(tpl, text)
		}
		return fmt.Sprintf("Summarize the following %[1]s text in 3 sentences or less in %[1]s. Output only the summary.\n\n%[2]s",
			target.Name(), text)
	case TaskReply:
		if tpl, ok := replyTemplates[target]; ok {
			return fmt.Sprintf(tpl, text)
		}
		return BuildPrompt(TaskReplyOnly, text, source, target, profile)
	case TaskReplyOnly:
		if tpl, ok := replyOnlyTemplates[target]; ok {
			return fmt.Sprintf(tpl, text)
		}
		return fmt.Sprintf("Write a polite business email reply to the following message in %s. Output only the reply.\n\n%s",
			target.Name(), text)
	default:
		if tpl, ok := translationTemplates[translationKey{profile.Kind, source, target}]; ok {
			return fmt.Sprintf(tpl, text)
		}
		return fmt.Sprintf(genericTranslationTemplate, source.Name(), target.Name(), text)
	}
}

// SystemMessage returns the system instruction pinning the output language,
// or "" when the task sends none.
func SystemMessage(task Task, language Language) string {
	return systemMessages[task][language]
}
