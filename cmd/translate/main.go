package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	rediscache "github.com/davidbz/transly/internal/cache/redis"
	"github.com/davidbz/transly/internal/config"
	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/observability"
	"github.com/davidbz/transly/internal/provider/echo"
	"github.com/davidbz/transly/internal/provider/ollama"
	"github.com/davidbz/transly/internal/provider/openai"
	"github.com/davidbz/transly/internal/provider/registry"
	"github.com/davidbz/transly/internal/routing"
)

const usage = `Usage: translate <command> [flags] [text]

Commands:
  translate   Translate between Japanese and English
  summarize   Summarize text in its own language
  reply       Draft a business reply
  detect      Detect the language of text
  status      Check whether the runtime is reachable
  models      List installed models
  preload     Load a model into memory

Text is read from stdin when no argument is given.
`

var errUsage = errors.New("usage")

type options struct {
	provider string
	endpoint string
	model    string
	from     string
	to       string
	stream   bool
	verbose  bool
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, stdin io.Reader, stdout io.Writer) error {
	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	var opts options
	flags.StringVar(&opts.provider, "provider", "", "provider name (ollama, openai, echo)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "runtime base URL")
	flags.StringVar(&opts.model, "model", "", "model identifier")
	flags.StringVar(&opts.from, "from", "", "source language (ja, en)")
	flags.StringVar(&opts.to, "to", "", "target or output language (ja, en)")
	flags.BoolVar(&opts.stream, "stream", true, "stream translation output")
	flags.BoolVar(&opts.verbose, "v", false, "enable development logging")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if opts.verbose {
		if _, err := observability.InitLogger(&observability.LogConfig{Development: true}); err != nil {
			return err
		}
	} else {
		observability.SetLogger(zap.NewNop())
	}

	service := newService(config.Load())

	switch command {
	case "translate":
		text, err := readText(flags.Args(), stdin)
		if err != nil {
			return err
		}
		return runTranslate(ctx, service, opts, text, stdout)
	case "summarize":
		text, err := readText(flags.Args(), stdin)
		if err != nil {
			return err
		}
		return runSummarize(ctx, service, opts, text, stdout)
	case "reply":
		text, err := readText(flags.Args(), stdin)
		if err != nil {
			return err
		}
		return runReply(ctx, service, opts, text, stdout)
	case "detect":
		text, err := readText(flags.Args(), stdin)
		if err != nil {
			return err
		}
		result := domain.DetectLanguage(text)
		fmt.Fprintln(stdout, field("language", result.Language.Name()))
		fmt.Fprintln(stdout, field("confidence", fmt.Sprintf("%.2f", result.Confidence)))
		return nil
	case "status":
		return runStatus(ctx, service, opts, stdout)
	case "models":
		return runModels(ctx, service, opts, stdout)
	case "preload":
		if err := service.Preload(ctx, opts.provider, opts.endpoint, opts.model); err != nil {
			return err
		}
		fmt.Fprintln(stdout, okStyle.Render("model loaded"))
		return nil
	default:
		return errUsage
	}
}

func newService(cfg *config.Config) *domain.TranslationService {
	reg := registry.NewRegistry()
	ctx := context.Background()
	for _, provider := range []domain.Provider{
		ollama.NewProvider(),
		openai.NewProvider(cfg.OpenAI),
		echo.NewProvider(),
	} {
		// Names are distinct, registration cannot fail.
		_ = reg.Register(ctx, provider)
	}

	var cache domain.ResultCache
	if cfg.Redis.Enabled() {
		cache = rediscache.NewResultCache(rediscache.NewClient(cfg.Redis), "transly:translation:")
	}

	return domain.NewTranslationService(
		reg,
		routing.NewRouter(reg, cfg.Engine.Provider),
		cache,
		nil,
		cfg.Engine.Settings(cfg.Redis.TTLDuration()),
	)
}

func runTranslate(ctx context.Context, service *domain.TranslationService, opts options, text string, stdout io.Writer) error {
	req := &domain.TranslationRequest{
		Text:       text,
		SourceLang: domain.Language(opts.from),
		TargetLang: domain.Language(opts.to),
		Endpoint:   opts.endpoint,
		Model:      opts.model,
		Provider:   opts.provider,
	}

	if !opts.stream {
		result, err := service.Translate(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, titleStyle.Render(direction(result.SourceLang, result.TargetLang)))
		fmt.Fprintln(stdout, result.TranslatedText)
		fmt.Fprintln(stdout, hintStyle.Render(fmt.Sprintf("%d ms", result.DurationMs)))
		return nil
	}

	listener := domain.ListenerFuncs{
		Chunk: func(event domain.StreamChunkEvent) {
			fmt.Fprint(stdout, event.Chunk)
		},
		Complete: func(event domain.StreamCompleteEvent) {
			fmt.Fprintln(stdout)
			fmt.Fprintln(stdout, hintStyle.Render(fmt.Sprintf("%d ms", event.DurationMs)))
		},
	}
	return service.TranslateStream(ctx, req, listener)
}

func runSummarize(ctx context.Context, service *domain.TranslationService, opts options, text string, stdout io.Writer) error {
	result, err := service.Summarize(ctx, &domain.SummarizeRequest{
		Text:     text,
		Language: domain.Language(opts.to),
		Endpoint: opts.endpoint,
		Model:    opts.model,
		Provider: opts.provider,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, titleStyle.Render("Summary"))
	fmt.Fprintln(stdout, result.Summary)
	fmt.Fprintln(stdout, hintStyle.Render(fmt.Sprintf("%d → %d chars, %d ms",
		result.OriginalLength, result.SummaryLength, result.DurationMs)))
	return nil
}

func runReply(ctx context.Context, service *domain.TranslationService, opts options, text string, stdout io.Writer) error {
	result, err := service.Reply(ctx, &domain.ReplyRequest{
		Text:            text,
		Language:        domain.Language(opts.to),
		ExplanationLang: domain.Language(opts.from),
		Endpoint:        opts.endpoint,
		Model:           opts.model,
		Provider:        opts.provider,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, titleStyle.Render("Reply ("+result.Language.Name()+")"))
	fmt.Fprintln(stdout, result.Reply)
	if result.Explanation != "" && result.Explanation != result.Reply {
		fmt.Fprintln(stdout, sectionStyle.Render("Explanation"))
		fmt.Fprintln(stdout, result.Explanation)
	}
	return nil
}

func runStatus(ctx context.Context, service *domain.TranslationService, opts options, stdout io.Writer) error {
	status := service.CheckStatus(ctx, opts.provider, opts.endpoint)
	if status.IsAvailable() {
		fmt.Fprintln(stdout, okStyle.Render("● available"))
		return nil
	}
	fmt.Fprintln(stdout, errorStyle.Render("● unavailable"))
	fmt.Fprintln(stdout, hintStyle.Render(status.Reason))
	return nil
}

func runModels(ctx context.Context, service *domain.TranslationService, opts options, stdout io.Writer) error {
	models, err := service.ListModels(ctx, opts.provider, opts.endpoint)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, titleStyle.Render("Installed models"))
	for _, model := range models {
		profile := domain.ClassifyModel(model.Name)
		fmt.Fprintln(stdout, field(model.Name, profile.Kind.String()))
	}
	return nil
}

func readText(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func direction(source, target domain.Language) string {
	return source.Name() + " → " + target.Name()
}
