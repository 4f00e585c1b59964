package configure

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrInvalidConfig = fmt.Errorf("invalid config")

func checkErr(err error) {
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
}

// Default is the configuration used when no file, flag or env var overrides anything.
func Default() Config {
	cfg := Config{
		LogLevel: "info",
		Config:   "config.yaml",
	}

	cfg.Palette.Colors = 256
	cfg.Palette.ThumbWidth = 160
	cfg.Palette.ThumbHeight = 275
	cfg.Palette.Columns = 6

	cfg.Animations = []Animation{
		{
			Name:         "add",
			FramesDir:    "assets/frames/add",
			Output:       "assets/add-task.gif",
			FrameDelayMs: 110,
			HoldDelayMs:  700,
		},
		{
			Name:         "delete",
			FramesDir:    "assets/frames/delete",
			Output:       "assets/delete-task.gif",
			FrameDelayMs: 100,
			HoldDelayMs:  800,
		},
	}

	return cfg
}

func New() *Config {
	cfg, err := Load(pflag.CommandLine, os.Args[1:])
	checkErr(err)

	initLogging(cfg.LogLevel, cfg.NoLogs)

	return cfg
}

// Load resolves the config from defaults, the given flag set, the config file
// and GIFS_ prefixed env vars, in increasing priority.
func Load(flags *pflag.FlagSet, args []string) (*Config, error) {
	config := viper.New()
	config.SetConfigType("yaml")

	b, err := json.Marshal(Default())
	if err != nil {
		return nil, err
	}

	// JSON is valid YAML; parsing it as YAML keeps numbers as ints so values
	// from the config file merge over them.
	tmp := viper.New()
	tmp.SetConfigType("yaml")
	if err := tmp.ReadConfig(bytes.NewBuffer(b)); err != nil {
		return nil, err
	}
	if err := config.MergeConfigMap(tmp.AllSettings()); err != nil {
		return nil, err
	}

	if flags.Lookup("config") == nil {
		flags.String("config", "config.yaml", "Config file location")
		flags.Bool("noheader", false, "Disable the startup header")
		flags.Bool("no_progress", false, "Disable the progress bar")
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := config.BindPFlags(flags); err != nil {
		return nil, err
	}

	config.SetConfigFile(config.GetString("config"))
	if err := config.MergeInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := Config{}

	config.SetEnvPrefix("GIFS")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AllowEmptyEnv(true)
	config.AutomaticEnv()

	if err := config.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

type Config struct {
	LogLevel   string `json:"log_level,omitempty" mapstructure:"log_level,omitempty"`
	Config     string `json:"config,omitempty" mapstructure:"config,omitempty"`
	NoHeader   bool   `json:"noheader,omitempty" mapstructure:"noheader,omitempty"`
	NoLogs     bool   `json:"nologs,omitempty" mapstructure:"nologs,omitempty"`
	NoProgress bool   `json:"no_progress,omitempty" mapstructure:"no_progress,omitempty"`

	// RootDir is the directory every relative path below resolves against.
	// Empty means the working directory, not the binary's location, so run
	// the tool from the repository root or set this explicitly.
	RootDir string `json:"root_dir" mapstructure:"root_dir,omitempty"`

	Palette struct {
		Colors      int `json:"colors,omitempty" mapstructure:"colors,omitempty"`
		ThumbWidth  int `json:"thumb_width,omitempty" mapstructure:"thumb_width,omitempty"`
		ThumbHeight int `json:"thumb_height,omitempty" mapstructure:"thumb_height,omitempty"`
		Columns     int `json:"columns,omitempty" mapstructure:"columns,omitempty"`
	} `json:"palette,omitempty" mapstructure:"palette,omitempty"`

	Animations []Animation `json:"animations,omitempty" mapstructure:"animations,omitempty"`
}

type Animation struct {
	Name         string `json:"name,omitempty" mapstructure:"name,omitempty"`
	FramesDir    string `json:"frames_dir,omitempty" mapstructure:"frames_dir,omitempty"`
	Output       string `json:"output,omitempty" mapstructure:"output,omitempty"`
	FrameDelayMs int    `json:"frame_delay_ms,omitempty" mapstructure:"frame_delay_ms,omitempty"`
	HoldDelayMs  int    `json:"hold_delay_ms,omitempty" mapstructure:"hold_delay_ms,omitempty"`
}

// Validate reports every problem with the config at once.
func (c *Config) Validate() error {
	var err error

	if c.Palette.Colors < 1 || c.Palette.Colors > 256 {
		err = multierror.Append(err, fmt.Errorf("%w: palette.colors must be in 1..256, got %d", ErrInvalidConfig, c.Palette.Colors))
	}
	if c.Palette.ThumbWidth <= 0 || c.Palette.ThumbHeight <= 0 {
		err = multierror.Append(err, fmt.Errorf("%w: palette thumbnail size must be positive, got %dx%d", ErrInvalidConfig, c.Palette.ThumbWidth, c.Palette.ThumbHeight))
	}
	if c.Palette.Columns <= 0 {
		err = multierror.Append(err, fmt.Errorf("%w: palette.columns must be positive, got %d", ErrInvalidConfig, c.Palette.Columns))
	}

	if len(c.Animations) == 0 {
		err = multierror.Append(err, fmt.Errorf("%w: no animations configured", ErrInvalidConfig))
	}

	seen := map[string]bool{}
	for i, a := range c.Animations {
		if a.Name == "" {
			err = multierror.Append(err, fmt.Errorf("%w: animations[%d] has no name", ErrInvalidConfig, i))
		} else if seen[a.Name] {
			err = multierror.Append(err, fmt.Errorf("%w: duplicate animation %q", ErrInvalidConfig, a.Name))
		}
		seen[a.Name] = true

		if a.FramesDir == "" || a.Output == "" {
			err = multierror.Append(err, fmt.Errorf("%w: animation %q needs frames_dir and output", ErrInvalidConfig, a.Name))
		}
		if a.FrameDelayMs <= 0 || a.HoldDelayMs <= 0 {
			err = multierror.Append(err, fmt.Errorf("%w: animation %q delays must be positive", ErrInvalidConfig, a.Name))
		}
	}

	return err
}
