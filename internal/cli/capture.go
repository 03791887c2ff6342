package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/peschuster/propresenter-srt/internal/caption"
	"github.com/peschuster/propresenter-srt/internal/config"
	"github.com/peschuster/propresenter-srt/internal/stagedisplay"
	"github.com/peschuster/propresenter-srt/internal/subtitle"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var captureCmd = &cobra.Command{
	Use:   "capture [host] [port] [password] [filename]",
	Short: "Record the stage display until interrupted",
	Long: `Connect to a ProPresenter stage display and record the current slide text.

Every change of the text ends the previous caption and starts a new one. A
cleared slide ends the caption without starting another. Press Ctrl+C to stop;
the captions are then written as <filename>_main.srt and, with translation
splitting on, <filename>_trans.srt.

Settings can also come from PPSRT_* environment variables or a .env file.

Examples:
  propresenter-srt capture 192.168.1.20 49476 secret
  propresenter-srt capture --host 192.168.1.20 --password secret --filename sunday
  propresenter-srt capture --split-translation=false -o captures`,
	Args: cobra.MaximumNArgs(4),
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	config.RegisterFlags(captureCmd.Flags())
	captureCmd.Flags().
		String("env-file", ".env", "Env file with PPSRT_* settings")
}

func runCapture(cmd *cobra.Command, args []string) error {
	startedAt := time.Now()

	loader := config.NewLoader()
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := loader.LoadEnvFile(envFile); err != nil {
		return err
	}
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := loader.Load(startedAt, args)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infow("Starting capture",
		"host", cfg.Host,
		"port", cfg.Port,
		"filename", cfg.FilenamePrefix,
		"output_dir", cfg.OutputDir,
		"split_translation", cfg.SplitTranslation,
	)

	engine := caption.NewEngine(cfg.SplitTranslation, startedAt, caption.WithLogger(logger))

	// the tracks are written even when the feed never connected
	runErr := listen(ctx, cfg, engine)
	if ctx.Err() != nil {
		logger.Infow("Caught interrupt signal")
	}
	if runErr != nil {
		logger.Errorw("Capture stopped", "error", runErr)
	}

	segments := engine.Finalize(time.Now())
	paths, writeErr := writeTracks(segments, cfg, engine.SessionStart())
	if err := multierr.Append(runErr, writeErr); err != nil {
		return err
	}

	fmt.Printf("Captions written: %d\n", len(segments))
	for _, path := range paths {
		absOutput, _ := filepath.Abs(path)
		fmt.Printf("  %s\n", absOutput)
	}

	return nil
}

// listen feeds the engine from the stage display until the connection ends
// or ctx is cancelled. A dial aborted by ctx is an interrupt, not an error.
func listen(ctx context.Context, cfg *config.Config, engine *caption.Engine) error {
	client, err := stagedisplay.Dial(ctx, stagedisplay.Options{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
	}, logger)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer client.Close()

	return client.Run(ctx, engine.Ingest)
}

// writeTracks renders and writes every enabled track. Both tracks are
// attempted; failures are combined.
func writeTracks(
	segments []caption.Segment,
	cfg *config.Config,
	sessionStart time.Time,
) ([]string, error) {
	tracks := caption.Tracks(segments, cfg.SplitTranslation, sessionStart)

	var (
		paths []string
		errs  error
	)
	for _, track := range []caption.Track{caption.TrackPrimary, caption.TrackSecondary} {
		content, ok := tracks[track]
		if !ok {
			continue
		}
		path := subtitle.TrackPath(cfg.OutputDir, cfg.FilenamePrefix, track.Suffix())
		if err := subtitle.WriteFile(path, content); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to write %s track: %w", track, err))
			continue
		}
		logger.Infow("Wrote subtitles",
			"track", track.String(),
			"path", path,
			"entries", len(segments),
		)
		paths = append(paths, path)
	}

	return paths, errs
}
