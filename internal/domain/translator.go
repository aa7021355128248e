package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/davidbz/transly/internal/observability"
)

// Settings are the per-process defaults owned by the settings collaborator.
// Request fields override them call by call.
type Settings struct {
	Endpoint  string
	Model     string
	ReplyMode ReplyMode
	CacheTTL  time.Duration
}

// TranslationService orchestrates translate, summarize and reply calls
// against a chat-completion backend.
type TranslationService struct {
	registry ProviderRegistry
	router   Router
	cache    ResultCache
	events   EventPublisher
	settings Settings
	preloads singleflight.Group
}

// NewTranslationService creates a new translation service (DI constructor).
// cache and events may be nil.
func NewTranslationService(
	registry ProviderRegistry,
	router Router,
	cache ResultCache,
	events EventPublisher,
	settings Settings,
) *TranslationService {
	if settings.ReplyMode == "" {
		settings.ReplyMode = ReplyModeBilingual
	}
	return &TranslationService{
		registry: registry,
		router:   router,
		cache:    cache,
		events:   events,
		settings: settings,
	}
}

// call is a request resolved against settings and the registry.
type call struct {
	ctx      context.Context
	provider Provider
	name     string
	endpoint string
	model    string
	profile  ModelProfile
	task     Task
}

// Translate translates req.Text and returns the cleaned result.
func (s *TranslationService) Translate(ctx context.Context, req *TranslationRequest) (*TranslationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrInvalidRequest)
	}

	source, target, err := resolveDirection(req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		return nil, err
	}

	c, err := s.prepare(ctx, TaskTranslate, req.Provider, req.Endpoint, req.Model)
	if err != nil {
		return nil, err
	}
	logger := observability.FromContext(c.ctx)

	start := time.Now()

	var key string
	if s.cache != nil {
		key = translationCacheKey(c.name, c.model, source, target, req.Text)
		cached, cacheErr := s.cache.Get(c.ctx, key)
		switch {
		case cacheErr == nil:
			logger.Info("translation cache HIT")
			return s.finishTranslation(c, cached, source, target, start), nil
		case !errors.Is(cacheErr, ErrCacheMiss):
			logger.Warn("cache get failed, continuing without cache", observability.Error(cacheErr))
		}
	}

	prompt := BuildPrompt(TaskTranslate, req.Text, source, target, c.profile)
	resp, err := s.chat(c, "", prompt)
	if err != nil {
		return nil, err
	}

	translated := Clean(resp.Content, req.Text)

	if s.cache != nil && translated != "" {
		if setErr := s.cache.Set(c.ctx, key, translated, s.settings.CacheTTL); setErr != nil {
			logger.Warn("failed to store translation in cache", observability.Error(setErr))
		}
	}

	return s.finishTranslation(c, translated, source, target, start), nil
}

func (s *TranslationService) finishTranslation(
	c *call,
	translated string,
	source, target Language,
	start time.Time,
) *TranslationResult {
	result := &TranslationResult{
		TranslatedText: translated,
		SourceLang:     source,
		TargetLang:     target,
		DurationMs:     elapsedMs(start),
	}
	s.publishCompleted(c, result.DurationMs)
	return result
}

// TranslateStream translates req.Text while reporting progress to listener.
// It returns after OnComplete was called, or with an error and no OnComplete.
func (s *TranslationService) TranslateStream(
	ctx context.Context,
	req *TranslationRequest,
	listener StreamListener,
) error {
	if req == nil {
		return fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}
	if listener == nil {
		return fmt.Errorf("%w: listener cannot be nil", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: text cannot be empty", ErrInvalidRequest)
	}

	source, target, err := resolveDirection(req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		return err
	}

	c, err := s.prepare(ctx, TaskTranslate, req.Provider, req.Endpoint, req.Model)
	if err != nil {
		return err
	}

	// Leaving this function tears the connection down, including when the
	// dispatcher stops at a done fragment before the body is drained.
	streamCtx, cancel := context.WithCancel(c.ctx)
	defer cancel()

	start := time.Now()
	prompt := BuildPrompt(TaskTranslate, req.Text, source, target, c.profile)

	fragments, err := c.provider.ChatStream(streamCtx, s.chatRequest(c, "", prompt))
	if err != nil {
		s.publishFailed(c, err)
		return err
	}

	observability.FromContext(c.ctx).Debug("stream opened",
		observability.String("source", string(source)),
		observability.String("target", string(target)))

	complete, err := dispatchStream(streamCtx, fragments, req.Text, start, listener)
	if err != nil {
		s.publishFailed(c, err)
		return err
	}

	s.publishCompleted(c, complete.DurationMs)
	return nil
}

// Summarize produces a summary of at most three sentences in the input language.
func (s *TranslationService) Summarize(ctx context.Context, req *SummarizeRequest) (*SummarizeResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrInvalidRequest)
	}

	language := req.Language
	if language == "" {
		language = DetectLanguage(req.Text).Language
	}
	if !language.Valid() {
		return nil, fmt.Errorf("%w: unsupported language %q", ErrInvalidRequest, language)
	}

	c, err := s.prepare(ctx, TaskSummarize, req.Provider, req.Endpoint, req.Model)
	if err != nil {
		return nil, err
	}
	if err := RequireAdvancedCapability(c.model); err != nil {
		s.publishFailed(c, err)
		return nil, err
	}

	start := time.Now()
	prompt := BuildPrompt(TaskSummarize, req.Text, language, language, c.profile)

	resp, err := s.chat(c, SystemMessage(TaskSummarize, language), prompt)
	if err != nil {
		return nil, err
	}

	summary := Clean(resp.Content, req.Text)
	result := &SummarizeResult{
		Summary:        summary,
		OriginalLength: utf8.RuneCountInString(req.Text),
		SummaryLength:  utf8.RuneCountInString(summary),
		DurationMs:     elapsedMs(start),
	}

	s.publishCompleted(c, result.DurationMs)
	return result, nil
}

// Reply drafts a polite business reply to req.Text. What Explanation holds
// depends on the configured ReplyMode.
func (s *TranslationService) Reply(ctx context.Context, req *ReplyRequest) (*ReplyResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrInvalidRequest)
	}

	language := req.Language
	if language == "" {
		language = DetectLanguage(req.Text).Language
	}
	explanationLang := req.ExplanationLang
	if explanationLang == "" {
		explanationLang = language.Opposite()
	}
	if !language.Valid() || !explanationLang.Valid() {
		return nil, fmt.Errorf("%w: unsupported language pair %q/%q", ErrInvalidRequest, language, explanationLang)
	}

	task := s.settings.ReplyMode.Task()
	if task == TaskReply && explanationLang == language {
		return nil, fmt.Errorf("%w: explanation language must differ from reply language %q", ErrInvalidRequest, language)
	}

	c, err := s.prepare(ctx, task, req.Provider, req.Endpoint, req.Model)
	if err != nil {
		return nil, err
	}
	if err := RequireAdvancedCapability(c.model); err != nil {
		s.publishFailed(c, err)
		return nil, err
	}

	start := time.Now()
	prompt := BuildPrompt(task, req.Text, explanationLang, language, c.profile)

	resp, err := s.chat(c, SystemMessage(task, language), prompt)
	if err != nil {
		return nil, err
	}

	var reply, explanation string
	if task == TaskReply {
		reply, explanation = SplitReply(resp.Content)
		reply = Clean(reply, req.Text)
		explanation = Clean(explanation, "")
		if reply == "" {
			reply = Clean(resp.Content, req.Text)
		}
	} else {
		reply = Clean(resp.Content, req.Text)
		explanation = reply
	}

	result := &ReplyResult{
		Reply:       reply,
		Explanation: explanation,
		Language:    language,
		DurationMs:  elapsedMs(start),
	}

	s.publishCompleted(c, result.DurationMs)
	return result, nil
}

// CheckStatus reports whether the backend at endpoint is reachable.
func (s *TranslationService) CheckStatus(ctx context.Context, providerName, endpoint string) ProviderStatus {
	provider, name, endpoint, err := s.resolve(ctx, providerName, endpoint)
	if err != nil {
		return Unavailable(err.Error())
	}

	status := provider.Status(observability.WithProvider(ctx, name), endpoint)
	observability.FromContext(ctx).Debug("provider status checked",
		observability.String("provider", name),
		observability.String("status", string(status.Status)))
	return status
}

// Preload warms model up. Concurrent preloads of the same model share one request.
func (s *TranslationService) Preload(ctx context.Context, providerName, endpoint, model string) error {
	provider, name, endpoint, err := s.resolve(ctx, providerName, endpoint)
	if err != nil {
		return err
	}
	if model == "" {
		model = s.settings.Model
	}

	key := name + "|" + endpoint + "|" + model
	_, err, shared := s.preloads.Do(key, func() (interface{}, error) {
		return nil, provider.Preload(ctx, endpoint, model)
	})

	logger := observability.FromContext(observability.WithModel(ctx, model))
	if err != nil {
		logger.Warn("preload failed", observability.Error(err), observability.Bool("shared", shared))
		return err
	}
	logger.Info("model preloaded", observability.Bool("shared", shared))
	return nil
}

// ListModels lists the models installed in the backend at endpoint.
func (s *TranslationService) ListModels(ctx context.Context, providerName, endpoint string) ([]ModelInfo, error) {
	provider, _, endpoint, err := s.resolve(ctx, providerName, endpoint)
	if err != nil {
		return nil, err
	}
	return provider.ListModels(ctx, endpoint)
}

// resolve applies the endpoint default and routes to a registered provider.
func (s *TranslationService) resolve(
	ctx context.Context,
	providerName, endpoint string,
) (Provider, string, string, error) {
	if endpoint == "" {
		endpoint = s.settings.Endpoint
	}
	if endpoint == "" {
		return nil, "", "", fmt.Errorf("%w: endpoint cannot be empty", ErrInvalidRequest)
	}

	name, err := s.router.Route(ctx, &RouteRequest{Provider: providerName, Endpoint: endpoint})
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: provider routing failed: %w", ErrInvalidRequest, err)
	}

	provider, err := s.registry.Get(ctx, name)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: provider not found: %w", ErrInvalidRequest, err)
	}

	return provider, name, endpoint, nil
}

func (s *TranslationService) prepare(
	ctx context.Context,
	task Task,
	providerName, endpoint, model string,
) (*call, error) {
	if model == "" {
		model = s.settings.Model
	}
	if model == "" {
		return nil, fmt.Errorf("%w: model cannot be empty", ErrInvalidRequest)
	}

	provider, name, endpoint, err := s.resolve(ctx, providerName, endpoint)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithTask(ctx, string(task))
	ctx = observability.WithProvider(ctx, name)
	ctx = observability.WithModel(ctx, model)

	profile := ClassifyModel(model)
	observability.FromContext(ctx).Debug("model profile resolved",
		observability.String("kind", profile.Kind.String()))

	return &call{
		ctx:      ctx,
		provider: provider,
		name:     name,
		endpoint: endpoint,
		model:    model,
		profile:  profile,
		task:     task,
	}, nil
}

func (s *TranslationService) chatRequest(c *call, system, prompt string) *ChatRequest {
	messages := make([]ChatMessage, 0, 2)
	if system != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: system})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: prompt})

	return &ChatRequest{
		Endpoint:  c.endpoint,
		Model:     c.model,
		Messages:  messages,
		Params:    SelectParameters(c.profile),
		KeepAlive: DefaultKeepAlive,
	}
}

func (s *TranslationService) chat(c *call, system, prompt string) (*ChatResponse, error) {
	resp, err := c.provider.Chat(c.ctx, s.chatRequest(c, system, prompt))
	if err != nil {
		observability.FromContext(c.ctx).Error("chat request failed", observability.Error(err))
		s.publishFailed(c, err)
		return nil, err
	}
	return resp, nil
}

func (s *TranslationService) publishCompleted(c *call, durationMs uint64) {
	if s.events == nil {
		return
	}
	s.events.Publish(c.ctx, "translation.completed", map[string]interface{}{
		"task":        string(c.task),
		"provider":    c.name,
		"model":       c.model,
		"duration_ms": durationMs,
	})
}

func (s *TranslationService) publishFailed(c *call, err error) {
	if s.events == nil {
		return
	}
	s.events.Publish(c.ctx, "translation.failed", map[string]interface{}{
		"task":     string(c.task),
		"provider": c.name,
		"model":    c.model,
		"error":    err.Error(),
	})
}

// resolveDirection fills in missing languages: both missing means detect
// the source; one missing means the other language of the pair.
func resolveDirection(text string, source, target Language) (Language, Language, error) {
	switch {
	case source == "" && target == "":
		source = DetectLanguage(text).Language
		target = source.Opposite()
	case source == "":
		source = target.Opposite()
	case target == "":
		target = source.Opposite()
	}

	if !source.Valid() || !target.Valid() {
		return "", "", fmt.Errorf("%w: unsupported language pair %q/%q", ErrInvalidRequest, source, target)
	}
	return source, target, nil
}

// elapsedMs rounds up so a finished call never reports zero.
func elapsedMs(start time.Time) uint64 {
	ms := (time.Since(start) + time.Millisecond - 1).Milliseconds()
	if ms < 1 {
		return 1
	}
	return uint64(ms)
}
