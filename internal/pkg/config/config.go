package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Data     DataConfig     `mapstructure:"data"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Display  DisplayConfig  `mapstructure:"display"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Insight  InsightConfig  `mapstructure:"insight"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr         string   `mapstructure:"addr"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// Source locates one dataset. URL wins over Path when both are set.
type Source struct {
	Path     string `mapstructure:"path"`
	URL      string `mapstructure:"url"`
	Format   string `mapstructure:"format"`
	Selector string `mapstructure:"selector"`
}

type DataConfig struct {
	Original     Source        `mapstructure:"original"`
	Cleansed     Source        `mapstructure:"cleansed"`
	FetchRetries uint64        `mapstructure:"fetch_retries"`
	FetchDelay   time.Duration `mapstructure:"fetch_delay"`
}

type PipelineConfig struct {
	DatePolicy  string   `mapstructure:"date_policy"`
	DateLayouts []string `mapstructure:"date_layouts"`
	BaseYear    int      `mapstructure:"base_year"`
	TopN        int      `mapstructure:"top_n"`
}

// DisplayConfig holds the label tables. Variables is keyed by display context,
// then by variable code.
type DisplayConfig struct {
	Regions   map[string]string            `mapstructure:"regions"`
	Variables map[string]map[string]string `mapstructure:"variables"`
}

type ForecastConfig struct {
	Alpha   float64 `mapstructure:"alpha"`
	Beta    float64 `mapstructure:"beta"`
	Horizon int     `mapstructure:"horizon"`
}

type InsightConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Secret  string        `mapstructure:"secret"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads .env (if present), the optional config file at path and
// TOURISM_* environment overrides, in increasing priority.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("godotenv.Load: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TOURISM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(constants.ViperGeminiAPIKey, "TOURISM_INSIGHT_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("viper.BindEnv: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("viper.ReadInConfig, path-%s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(constants.ViperServerAddr, ":8080")
	v.SetDefault(constants.ViperServerAllowOrigins, []string{"http://localhost:3000"})

	v.SetDefault(constants.ViperDataOriginal, map[string]interface{}{
		"path":   "data/thailand_domestic_tourism_original.csv",
		"format": "csv",
	})
	v.SetDefault(constants.ViperDataCleansed, map[string]interface{}{
		"path":   "data/thailand_domestic_tourism.csv",
		"format": "csv",
	})
	v.SetDefault(constants.ViperDataFetchRetries, 10)
	v.SetDefault(constants.ViperDataFetchDelay, 10*time.Millisecond)

	v.SetDefault(constants.ViperPipelineDatePolicy, "abort")
	v.SetDefault(constants.ViperPipelineDateLayouts, []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339, "2006/01/02"})
	v.SetDefault(constants.ViperPipelineBaseYear, 2019)
	v.SetDefault(constants.ViperPipelineTopN, 10)

	v.SetDefault(constants.ViperDisplayRegions, map[string]string{
		"central":        "Central",
		"east":           "East",
		"east_northeast": "Northeast",
		"north":          "North",
		"south":          "South",
	})
	v.SetDefault(constants.ViperDisplayVariables, map[string]map[string]string{
		"tourist": {
			"no_tourist_all":     "All tourists",
			"no_tourist_thai":    "Thai tourists",
			"no_tourist_foreign": "Foreign tourists",
		},
		"revenue": {
			"revenue_all":     "Revenue from all tourists",
			"revenue_thai":    "Revenue from Thai tourists",
			"revenue_foreign": "Revenue from foreign tourists",
		},
		"comparison": {
			"no_tourist_all":     "Tourist numbers",
			"revenue_all":        "Revenue",
			"ratio_tourist_stay": "Occupancy rate",
		},
	})

	v.SetDefault(constants.ViperForecastAlpha, 0.8)
	v.SetDefault(constants.ViperForecastBeta, 0.2)
	v.SetDefault(constants.ViperForecastHorizon, 3)

	v.SetDefault(constants.ViperInsightTimeout, 30*time.Second)
	v.SetDefault(constants.ViperSecretKey, "")
	v.SetDefault(constants.ViperGeminiAPIKey, "")
	v.SetDefault(constants.ViperGeminiModel, "gemini-1.5-flash")
	v.SetDefault(constants.ViperGeminiEndpoint, "https://generativelanguage.googleapis.com/v1beta/models")

	v.SetDefault(constants.ViperLogLevel, "info")
}

func (c *Config) validate() error {
	switch c.Pipeline.DatePolicy {
	case "abort", "skip":
	default:
		return fmt.Errorf("pipeline.date_policy must be abort or skip, got %q", c.Pipeline.DatePolicy)
	}
	if c.Pipeline.TopN <= 0 {
		return fmt.Errorf("pipeline.top_n must be positive, got %d", c.Pipeline.TopN)
	}
	for name, src := range map[string]Source{"original": c.Data.Original, "cleansed": c.Data.Cleansed} {
		if src.Path == "" && src.URL == "" {
			return fmt.Errorf("data.%s: path or url is required", name)
		}
		switch src.Format {
		case "", "csv":
		case "html":
			if src.Selector == "" {
				return fmt.Errorf("data.%s: selector is required for html sources", name)
			}
		default:
			return fmt.Errorf("data.%s: unknown format %q", name, src.Format)
		}
	}
	return nil
}
