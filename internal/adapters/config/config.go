package config

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	qr "github.com/qrlogo/qrlogo/pkg/qrcode"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Debug     bool
	LogToFile bool
	LogsDir   string

	Foreground color.Color
	Background color.Color
	BaseWidth  int
	LogoScale  float64

	HistoryPath string
	Autosave    bool

	OutputDir   string
	PreviewSize int

	// Command line input
	Command          string
	Content          string
	LogoPath         string
	HistoryIndex     int
	FallbackToNoLogo bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("settings.debug", false)
	v.SetDefault("settings.log-to-file", false)
	v.SetDefault("settings.logs-dir", "logs")

	v.SetDefault("qr.foreground", "black")
	v.SetDefault("qr.background", "white")
	v.SetDefault("qr.base-width", qr.Default.BaseWidth)
	v.SetDefault("qr.logo-scale", qr.Default.LogoScale)

	v.SetDefault("history.path", "qrGenConfig.toml")
	v.SetDefault("history.autosave", false)

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.preview-size", 300)
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("qrlogo", pflag.ContinueOnError)
	flags.String("config", "", "settings file (default ./config.yaml if present)")
	flags.StringP("content", "c", "", "text or URI to encode")
	flags.StringP("logo", "l", "", "path of the logo placed at the center")
	flags.IntP("history-index", "i", -1, "use the logo at this position of the history")
	flags.StringP("out-dir", "o", "", "directory the PNG files are written to")
	flags.Bool("fallback-no-logo", false, "retry without logo when the logo cannot be loaded")
	flags.Bool("debug", false, "enable debug logging")
	return flags
}

// Get reads the settings file, QRLOGO_* environment variables and the command line,
// in increasing order of precedence. A missing settings file is not an error.
func Get(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("qrlogo")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file, _ := flags.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	for key, flag := range map[string]string{
		"settings.debug": "debug",
		"output.dir":     "out-dir",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	fg, err := qr.ParseColor(v.GetString("qr.foreground"))
	if err != nil {
		return nil, fmt.Errorf("qr.foreground: %w", err)
	}
	bg, err := qr.ParseColor(v.GetString("qr.background"))
	if err != nil {
		return nil, fmt.Errorf("qr.background: %w", err)
	}

	cfg := &Config{
		Debug:     v.GetBool("settings.debug"),
		LogToFile: v.GetBool("settings.log-to-file"),
		LogsDir:   v.GetString("settings.logs-dir"),

		Foreground: fg,
		Background: bg,
		BaseWidth:  v.GetInt("qr.base-width"),
		LogoScale:  v.GetFloat64("qr.logo-scale"),

		HistoryPath: v.GetString("history.path"),
		Autosave:    v.GetBool("history.autosave"),

		OutputDir:   v.GetString("output.dir"),
		PreviewSize: v.GetInt("output.preview-size"),

		Command: "make",
	}

	cfg.Content, _ = flags.GetString("content")
	cfg.LogoPath, _ = flags.GetString("logo")
	cfg.HistoryIndex, _ = flags.GetInt("history-index")
	cfg.FallbackToNoLogo, _ = flags.GetBool("fallback-no-logo")
	if rest := flags.Args(); len(rest) > 0 {
		cfg.Command = rest[0]
	}

	return cfg, nil
}
