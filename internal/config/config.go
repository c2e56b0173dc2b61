package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/gubarz/walkmd/internal/marker"
)

// ErrInvalidOptions is returned when marker or output options fail validation
var ErrInvalidOptions = errors.New("invalid options")

// SourcePlaceholder is replaced by the quoted source in the replace template
const SourcePlaceholder = "$source"

const (
	DefaultStart       = `START\s*[a-z0-9_-]+`
	DefaultEnd         = `END\s*[a-z0-9_-]+`
	DefaultIdentifier  = `(?:START|END)\s*([a-z0-9_-]+)`
	DefaultReplace     = "export default " + SourcePlaceholder + ";"
	DefaultWalkthrough = "walkthrough.md"
)

// Config holds the application configuration
type Config struct {
	Start             string `mapstructure:"start"`
	End               string `mapstructure:"end"`
	Identifier        string `mapstructure:"identifier"`
	Replace           string `mapstructure:"replace"`
	GeneratedFileName string `mapstructure:"generated_file_name"`
	Walkthrough       string `mapstructure:"walkthrough"`
	ColorTitle        string `mapstructure:"color_title"`
	ColorCode         string `mapstructure:"color_code"`
	ColorDim          string `mapstructure:"color_dim"`
	ColorBorder       string `mapstructure:"color_border"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	SetDefaults()

	viper.SetConfigName("walkmd")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "walkmd"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("WALKMD")
	viper.AutomaticEnv()

	// A missing config file is fine, defaults apply
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// SetDefaults registers the default value of every key
func SetDefaults() {
	viper.SetDefault("start", DefaultStart)
	viper.SetDefault("end", DefaultEnd)
	viper.SetDefault("identifier", DefaultIdentifier)
	viper.SetDefault("replace", DefaultReplace)
	viper.SetDefault("generated_file_name", "")
	viper.SetDefault("walkthrough", DefaultWalkthrough)
	viper.SetDefault("color_title", "36") // Cyan
	viper.SetDefault("color_code", "32")  // Green
	viper.SetDefault("color_dim", "90")   // Gray
	viper.SetDefault("color_border", "240")
}

// Options are the validated marker and output settings
type Options struct {
	Start             *regexp.Regexp
	End               *regexp.Regexp
	Identifier        *regexp.Regexp
	Replace           string
	GeneratedFileName string
}

// Options compiles and validates the configured marker settings
func (c Config) Options() (*Options, error) {
	var errs []error

	compile := func(key, expr string) *regexp.Regexp {
		if strings.TrimSpace(expr) == "" {
			errs = append(errs, fmt.Errorf("%s: pattern must not be empty", key))
			return nil
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return nil
		}
		return re
	}

	opts := &Options{
		Start:             compile("start", c.Start),
		End:               compile("end", c.End),
		Identifier:        compile("identifier", c.Identifier),
		Replace:           c.Replace,
		GeneratedFileName: c.GeneratedFileName,
	}

	if opts.Replace == "" {
		opts.Replace = DefaultReplace
	}
	if !strings.Contains(opts.Replace, SourcePlaceholder) {
		errs = append(errs, fmt.Errorf("replace: template must contain %s", SourcePlaceholder))
	}
	if name := opts.GeneratedFileName; name != "" && (filepath.Base(name) != name || name == "." || name == "..") {
		errs = append(errs, fmt.Errorf("generated_file_name: %q must be a plain file name", name))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, errors.Join(errs...))
	}
	return opts, nil
}

// Patterns returns the marker patterns for the locator
func (o *Options) Patterns() marker.Patterns {
	return marker.Patterns{Start: o.Start, End: o.End, Identifier: o.Identifier}
}

// Default returns a Config populated with the built-in defaults
func Default() Config {
	return Config{
		Start:       DefaultStart,
		End:         DefaultEnd,
		Identifier:  DefaultIdentifier,
		Replace:     DefaultReplace,
		Walkthrough: DefaultWalkthrough,
		ColorTitle:  "36",
		ColorCode:   "32",
		ColorDim:    "90",
		ColorBorder: "240",
	}
}

// GetOptions validates the active configuration
func GetOptions() (*Options, error) {
	return C.Options()
}

// GetWalkthrough returns the walkthrough file name with tilde expansion
func GetWalkthrough() string {
	return expandTilde(viper.GetString("walkthrough"))
}

// GetColorTitle returns the color for step titles
func GetColorTitle() string {
	return viper.GetString("color_title")
}

// GetColorCode returns the color for source lines
func GetColorCode() string {
	return viper.GetString("color_code")
}

// GetColorDim returns the color for secondary text
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// GetColorBorder returns the color for borders and dividers
func GetColorBorder() string {
	return viper.GetString("color_border")
}

// Set overrides a key at runtime and refreshes C
func Set(key string, value any) error {
	viper.Set(key, value)
	return viper.Unmarshal(&C)
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
