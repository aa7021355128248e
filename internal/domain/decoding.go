package domain

// DecodingParams are the sampling options sent with every chat request.
type DecodingParams struct {
	Temperature     float64
	RepeatPenalty   float64
	MaxOutputTokens int
	// TopP is nil when the runtime default applies.
	TopP *float64
}

const defaultMaxOutputTokens = 4096

// SelectParameters maps a model profile to its decoding options.
// Specialized translators get a lower temperature and a stronger repeat
// penalty; general chat models get nucleus sampling.
func SelectParameters(profile ModelProfile) DecodingParams {
	if profile.Kind == ModelKindSpecializedTranslation {
		return DecodingParams{
			Temperature:     0.1,
			RepeatPenalty:   1.4,
			MaxOutputTokens: defaultMaxOutputTokens,
		}
	}

	topP := 0.9
	return DecodingParams{
		Temperature:     0.2,
		RepeatPenalty:   1.1,
		MaxOutputTokens: defaultMaxOutputTokens,
		TopP:            &topP,
	}
}

// Options renders the params in the runtime's option vocabulary.
func (p DecodingParams) Options() map[string]interface{} {
	opts := map[string]interface{}{
		"temperature":    p.Temperature,
		"repeat_penalty": p.RepeatPenalty,
		"num_predict":    p.MaxOutputTokens,
	}
	if p.TopP != nil {
		opts["top_p"] = *p.TopP
	}
	return opts
}
