package domain

import (
	"strconv"
	"strings"
)

// ModelKind separates translation-specialized models from general chat models.
type ModelKind int

const (
	ModelKindGeneralPurpose ModelKind = iota
	ModelKindSpecializedTranslation
)

// String implements fmt.Stringer.
func (k ModelKind) String() string {
	if k == ModelKindSpecializedTranslation {
		return "specialized-translation"
	}
	return "general-purpose"
}

// ModelProfile is derived from a model identifier on every call.
type ModelProfile struct {
	Kind ModelKind
	// DeclaredSizeBillions is nil when the identifier carries no size tag.
	DeclaredSizeBillions *uint
}

const (
	// specializedVendorToken marks the PLaMo translation model family.
	specializedVendorToken = "plamo"
	specializedTaskToken   = "translate"

	// MinAdvancedModelSizeBillions gates summarize and reply.
	MinAdvancedModelSizeBillions uint = 7
)

// sizeSeparators may precede the parameter-count tag, e.g. "qwen2.5:7b".
const sizeSeparators = ":-_"

// ClassifyModel resolves the capability profile of a model identifier.
// Unknown models are general purpose.
func ClassifyModel(model string) ModelProfile {
	lower := strings.ToLower(model)

	profile := ModelProfile{Kind: ModelKindGeneralPurpose}
	if strings.Contains(lower, specializedVendorToken) && strings.Contains(lower, specializedTaskToken) {
		profile.Kind = ModelKindSpecializedTranslation
	}

	if size, ok := ExtractModelSize(model); ok {
		profile.DeclaredSizeBillions = &size
	}

	return profile
}

// ExtractModelSize parses the parameter count in billions from tags such as
// "qwen2.5:3b", "model-7b" or "gemma_2_9b". The first digits-then-"b" run
// directly after a separator wins.
func ExtractModelSize(model string) (uint, bool) {
	lower := strings.ToLower(model)

	for i := 0; i < len(lower); i++ {
		if !strings.ContainsRune(sizeSeparators, rune(lower[i])) {
			continue
		}
		if size, ok := sizeAfter(lower[i+1:]); ok {
			return size, true
		}
	}

	return 0, false
}

// sizeAfter reads a leading run of ASCII digits terminated by 'b'.
func sizeAfter(s string) (uint, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || end >= len(s) || s[end] != 'b' {
		return 0, false
	}

	size, err := strconv.ParseUint(s[:end], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(size), true
}

// RequireAdvancedCapability fails when the model declares fewer parameters
// than MinAdvancedModelSizeBillions. Models without a size tag pass.
func RequireAdvancedCapability(model string) error {
	size, ok := ExtractModelSize(model)
	if !ok || size >= MinAdvancedModelSizeBillions {
		return nil
	}
	return &CapabilityError{SizeBillions: size}
}
