package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrCacheMiss indicates no cached entry was found.
var ErrCacheMiss = errors.New("cache miss")

// translationCacheKey builds a stable key from everything that shapes the output.
func translationCacheKey(provider, model string, source, target Language, text string) string {
	parts := []string{
		fmt.Sprintf("provider: %s", provider),
		fmt.Sprintf("model: %s", model),
		fmt.Sprintf("direction: %s>%s", source, target),
		fmt.Sprintf("text: %s", text),
	}
	hash := sha256.Sum256([]byte(strings.Join(parts, " | ")))
	return fmt.Sprintf("translation:%s", hex.EncodeToString(hash[:]))
}
