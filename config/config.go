package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config carries every externally tunable knob. It is loaded once at startup
// and passed by value into constructors, so substituting endpoints in tests
// is a matter of building a literal.
type Config struct {
	BubblemapsAPIURL string `mapstructure:"bubblemapsApiUrl"`
	BubblemapsAppURL string `mapstructure:"bubblemapsAppUrl"`
	CoingeckoAPIURL  string `mapstructure:"coingeckoApiUrl"`

	// FetchTimeout bounds each data-source call; CaptureDeadline bounds the
	// whole render-and-screenshot step. Rendering is the slow path, so the
	// two are independent knobs.
	FetchTimeout    time.Duration `mapstructure:"fetchTimeout"`
	CaptureDeadline time.Duration `mapstructure:"captureDeadline"`

	ArtifactDir string `mapstructure:"artifactDir"`
	Headless    bool   `mapstructure:"headless"`
}

func Default() Config {
	return Config{
		BubblemapsAPIURL: "https://api-legacy.bubblemaps.io",
		BubblemapsAppURL: "https://app.bubblemaps.io",
		CoingeckoAPIURL:  "https://api.coingecko.com/api/v3",
		FetchTimeout:     15 * time.Second,
		CaptureDeadline:  25 * time.Second,
		ArtifactDir:      os.TempDir(),
		Headless:         true,
	}
}

// Load reads the yaml config at path on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "error reading config file %v", path)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "error unmarshalling config")
	}
	return cfg, nil
}
