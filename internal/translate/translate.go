package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// one caption as exchanged with the model: its entry position and the
// lines shown on screen
type Caption struct {
	Index int      `json:"index"`
	Lines []string `json:"lines"`
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// environment variable holding the provider's API key
func (p Provider) KeyEnv() string {
	switch p {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "API_KEY"
	}
}

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BatchSize      int // captions per API request (default 50)
}

const DefaultBatchSize = 50

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// completer sends one prompt to a model and returns the reply text.
// Providers only implement this; prompting and reply parsing are shared.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// Translator translates captions through one provider.
type Translator struct {
	provider Provider
	backend  completer
	options  Options
}

// New creates a Translator for provider.
func New(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (*Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	var (
		backend completer
		err     error
	)
	switch provider {
	case ProviderGemini:
		backend, err = newGeminiBackend(ctx, apiKey, opts.Model)
	case ProviderOpenAI:
		backend, err = newOpenAIBackend(apiKey, opts.Model)
	case ProviderAnthropic:
		backend, err = newAnthropicBackend(apiKey, opts.Model)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}

	return &Translator{provider: provider, backend: backend, options: opts}, nil
}

// Translate sends captions in batches, up to concurrency requests at a time.
// The result holds one caption per input caption, in input order, each with
// as many lines as its source.
func (t *Translator) Translate(
	ctx context.Context,
	captions []Caption,
	concurrency int,
) ([]Caption, error) {
	if len(captions) == 0 {
		return []Caption{}, nil
	}
	batches := splitBatches(captions, t.options.batchSize())
	return runBatches(ctx, batches, concurrency, t.translateBatch)
}

func (t *Translator) translateBatch(ctx context.Context, batch []Caption) ([]Caption, error) {
	reply, err := t.backend.complete(ctx, BuildPrompt(t.options, batch))
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", t.provider, err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, fmt.Errorf("empty reply from %s", t.provider)
	}
	return parseReply(reply, batch)
}

// precedes the caption JSON in every prompt
const captionsHeader = "Captions:\n"

// BuildPrompt asks for a line-by-line translation of captions as JSON.
func BuildPrompt(opts Options, captions []Caption) string {
	var sb strings.Builder

	source := "the following"
	if opts.InputLanguage != "" {
		source += " " + opts.InputLanguage
	}
	fmt.Fprintf(&sb, "Translate %s live presentation captions to %s.\n", source, opts.TargetLanguage)
	sb.WriteString("The captions are song lyrics, scripture or slide text shown on a stage screen; keep their register.\n")
	sb.WriteString(`Each caption is a JSON object with an "index" and the "lines" shown on screen. `)
	sb.WriteString("Translate every line on its own and return exactly as many lines, leaving empty lines empty.\n")
	sb.WriteString(`Reply with only a JSON array holding one {"index", "lines"} object per caption, with unchanged indices.` + "\n")

	if opts.Prompt != "" {
		fmt.Fprintf(&sb, "\nAdditional instructions: %s\n", opts.Prompt)
	}

	sb.WriteString("\n" + captionsHeader)
	data, _ := json.Marshal(captions)
	sb.Write(data)

	return sb.String()
}
