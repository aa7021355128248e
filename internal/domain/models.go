package domain

// Event channel names consumed by UI listeners.
const (
	EventTranslationChunk    = "translation-chunk"
	EventTranslationComplete = "translation-complete"
)

// DefaultKeepAlive asks the runtime to keep the model loaded between calls.
const DefaultKeepAlive = "10m"

// TranslationRequest is one translate call. Empty languages are detected
// from the text; empty Provider lets the router decide.
type TranslationRequest struct {
	Text       string   `json:"text"`
	SourceLang Language `json:"sourceLang,omitempty"`
	TargetLang Language `json:"targetLang,omitempty"`
	Endpoint   string   `json:"endpoint,omitempty"`
	Model      string   `json:"model,omitempty"`
	Provider   string   `json:"provider,omitempty"`
}

// TranslationResult is returned by Translate.
type TranslationResult struct {
	TranslatedText string   `json:"translatedText"`
	SourceLang     Language `json:"sourceLang"`
	TargetLang     Language `json:"targetLang"`
	DurationMs     uint64   `json:"durationMs"`
}

// SummarizeRequest is one summarize call; Language is both input and output language.
type SummarizeRequest struct {
	Text     string   `json:"text"`
	Language Language `json:"language,omitempty"`
	Endpoint string   `json:"endpoint,omitempty"`
	Model    string   `json:"model,omitempty"`
	Provider string   `json:"provider,omitempty"`
}

// SummarizeResult lengths count characters, not bytes.
type SummarizeResult struct {
	Summary        string `json:"summary"`
	OriginalLength int    `json:"originalLength"`
	SummaryLength  int    `json:"summaryLength"`
	DurationMs     uint64 `json:"durationMs"`
}

// ReplyRequest asks for a reply written in Language; ExplanationLang is the
// language of the explanation section in bilingual mode.
type ReplyRequest struct {
	Text            string   `json:"text"`
	Language        Language `json:"language,omitempty"`
	ExplanationLang Language `json:"explanationLang,omitempty"`
	Endpoint        string   `json:"endpoint,omitempty"`
	Model           string   `json:"model,omitempty"`
	Provider        string   `json:"provider,omitempty"`
}

// ReplyResult is returned by Reply.
type ReplyResult struct {
	Reply       string   `json:"reply"`
	Explanation string   `json:"explanation"`
	Language    Language `json:"language"`
	DurationMs  uint64   `json:"durationMs"`
}

// StreamChunkEvent is emitted once per decoded fragment carrying content.
type StreamChunkEvent struct {
	Chunk       string `json:"chunk"`
	Accumulated string `json:"accumulated"`
	Done        bool   `json:"done"`
}

// StreamCompleteEvent is emitted once, after the terminal fragment or stream end.
type StreamCompleteEvent struct {
	TranslatedText string `json:"translatedText"`
	DurationMs     uint64 `json:"durationMs"`
}

// StatusState is the tag of ProviderStatus.
type StatusState string

const (
	StatusAvailable   StatusState = "available"
	StatusUnavailable StatusState = "unavailable"
)

// ProviderStatus is computed fresh on every health check.
type ProviderStatus struct {
	Status StatusState `json:"status"`
	Reason string      `json:"reason,omitempty"`
}

// Available builds an available status.
func Available() ProviderStatus {
	return ProviderStatus{Status: StatusAvailable}
}

// Unavailable builds an unavailable status with a display reason.
func Unavailable(reason string) ProviderStatus {
	return ProviderStatus{Status: StatusUnavailable, Reason: reason}
}

// IsAvailable reports whether the runtime answered the health check.
func (s ProviderStatus) IsAvailable() bool {
	return s.Status == StatusAvailable
}

// ModelInfo describes a model installed in the runtime.
type ModelInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
}

// ChatMessage is a role-tagged message.
type ChatMessage struct {
	Role    string `json:"role"` // user, system
	Content string `json:"content"`
}

// ChatRequest is what the service hands to a provider.
type ChatRequest struct {
	Endpoint  string
	Model     string
	Messages  []ChatMessage
	Params    DecodingParams
	KeepAlive string
}

// ChatResponse is a whole, non-streamed answer.
type ChatResponse struct {
	Content string
}

// StreamFragment is one decoded unit of a streamed answer.
// HasContent distinguishes an empty content string from an absent message.
type StreamFragment struct {
	Content    string
	HasContent bool
	Done       bool
	Err        error
}
