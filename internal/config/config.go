package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// environment variables are PPSRT_<FLAG>, e.g. PPSRT_OUTPUT_DIR
const EnvPrefix = "PPSRT"

const (
	KeyHost             = "host"
	KeyPort             = "port"
	KeyPassword         = "password"
	KeyFilename         = "filename"
	KeyOutputDir        = "output-dir"
	KeySplitTranslation = "split-translation"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 49476
)

// capture settings
type Config struct {
	Host             string
	Port             int
	Password         string
	FilenamePrefix   string
	OutputDir        string
	SplitTranslation bool
}

// DefaultFilenamePrefix is the UTC ISO-8601 instant with ':' and '.'
// removed, e.g. 2024-03-10T093000123Z.
func DefaultFilenamePrefix(t time.Time) string {
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	return strings.NewReplacer(":", "", ".", "").Replace(iso)
}

// Loader merges defaults, an optional .env file, PPSRT_* variables and
// command line flags.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyHost, DefaultHost)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeySplitTranslation, true)

	return &Loader{v: v}
}

// RegisterFlags adds the capture flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyHost, DefaultHost, "Stage display host")
	fs.Int(KeyPort, DefaultPort, "Stage display port")
	fs.String(KeyPassword, "", "Stage display password")
	fs.String(KeyFilename, "", "Output file name prefix (default: start time, e.g. 2024-03-10T093000123Z)")
	fs.StringP(KeyOutputDir, "o", ".", "Directory for the written subtitle files")
	fs.Bool(KeySplitTranslation, true, "Split alternating lines into a main and a translation track")
}

func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	if err := l.v.BindPFlags(fs); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	return nil
}

// LoadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func (l *Loader) LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration. Positional args follow the form
// [host [port [password [filename]]]] and win over flags.
func (l *Loader) Load(startedAt time.Time, args []string) (*Config, error) {
	cfg := &Config{
		Host:             l.v.GetString(KeyHost),
		Port:             l.v.GetInt(KeyPort),
		Password:         l.v.GetString(KeyPassword),
		FilenamePrefix:   l.v.GetString(KeyFilename),
		OutputDir:        l.v.GetString(KeyOutputDir),
		SplitTranslation: l.v.GetBool(KeySplitTranslation),
	}

	if len(args) > 4 {
		return nil, fmt.Errorf("%w: expected at most 4 positional arguments, got %d", ErrInvalid, len(args))
	}
	if len(args) > 0 {
		cfg.Host = args[0]
	}
	if len(args) > 1 {
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("%w: port %q is not a number", ErrInvalid, args[1])
		}
		cfg.Port = port
	}
	if len(args) > 2 {
		cfg.Password = args[2]
	}
	if len(args) > 3 {
		cfg.FilenamePrefix = args[3]
	}

	if cfg.FilenamePrefix == "" {
		cfg.FilenamePrefix = DefaultFilenamePrefix(startedAt)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("%w: host is required", ErrInvalid)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.Port)
	}
	if strings.ContainsAny(c.FilenamePrefix, `/\`) {
		return fmt.Errorf("%w: filename prefix %q must not contain path separators", ErrInvalid, c.FilenamePrefix)
	}
	return nil
}
