package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peschuster/propresenter-srt/internal/caption"
	"github.com/peschuster/propresenter-srt/internal/subtitle"
	"github.com/peschuster/propresenter-srt/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [main_srt_file]",
	Short: "Create the translation track of a capture using AI",
	Long: `Translate a captured main track and write it as the matching translation track.

Use this when the stage display only showed one language. Timings and
numbering are kept, so <filename>_main.srt and <filename>_trans.srt line up
the same way as a capture with translation splitting.

Examples:
  propresenter-srt translate sunday_main.srt --target-language german
  propresenter-srt translate sunday_main.srt -t fr --provider openai
  propresenter-srt translate sunday_main.srt -t es --provider anthropic -o spanish.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("language", "l", "", "Language of the captured text (optional)")
	translateCmd.Flags().
		StringP("output", "o", "", "Output file path (default: <filename>_trans.srt)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY env var)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		String("provider", "gemini", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		String("prompt", "", "Additional instructions for the translator")
	translateCmd.Flags().
		Int("concurrency", 3, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", translate.DefaultBatchSize, "Number of captions per API request")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("language")
	outputPath, _ := cmd.Flags().GetString("output")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", inputPath)
	}
	if !strings.EqualFold(filepath.Ext(inputPath), subtitle.Extension) {
		return fmt.Errorf("unsupported subtitle format %q: use %s", filepath.Ext(inputPath), subtitle.Extension)
	}
	if strings.TrimSpace(targetLang) == "" {
		return fmt.Errorf("target language is required")
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	provider := translate.Provider(strings.ToLower(providerStr))
	if apiKey == "" {
		apiKey = os.Getenv(provider.KeyEnv())
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			provider.KeyEnv(),
		)
	}

	if outputPath == "" {
		outputPath = translationPath(inputPath)
	}
	if sameFile(inputPath, outputPath) {
		return fmt.Errorf("output %s would overwrite the input", outputPath)
	}

	logger.Infow("Starting caption translation",
		"input", inputPath,
		"output", outputPath,
		"provider", provider,
		"target_language", targetLang,
		"input_language", inputLang,
		"model", model,
	)

	subFile, err := subtitle.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	primary := subFile.Subtitle()

	logger.Infow("Parsed subtitle file", "entries", len(primary.Entries))

	translator, err := translate.New(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
		BatchSize:      batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	secondary, err := translate.Fill(ctx, translator, primary, concurrency)
	if err != nil {
		return err
	}
	secondary.Language = targetLang

	if err := subtitle.NewWriter().Write(secondary, outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Translation track written: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(secondary.Entries))
	fmt.Printf("  Target language: %s\n", targetLang)

	return nil
}

// sunday_main.srt -> sunday_trans.srt; other names get _trans appended
func translationPath(mainPath string) string {
	ext := filepath.Ext(mainPath)
	base := strings.TrimSuffix(mainPath, ext)
	mainSuffix := "_" + caption.TrackPrimary.Suffix()
	base = strings.TrimSuffix(base, mainSuffix)
	return base + "_" + caption.TrackSecondary.Suffix() + subtitle.Extension
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
