package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/trackcore/internal/geodesy"
	"github.com/sells-group/trackcore/internal/simplify"
	"github.com/sells-group/trackcore/internal/smooth"
	"github.com/sells-group/trackcore/internal/srtm"
)

// Config holds the full application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Distance DistanceConfig `yaml:"distance" mapstructure:"distance"`
	Simplify SimplifyConfig `yaml:"simplify" mapstructure:"simplify"`
	Smooth   SmoothConfig   `yaml:"smooth" mapstructure:"smooth"`
	SRTM     SRTMConfig     `yaml:"srtm" mapstructure:"srtm"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
}

// DistanceConfig selects the distance algorithm.
type DistanceConfig struct {
	Algorithm string `yaml:"algorithm" mapstructure:"algorithm"`
}

// SimplifyConfig configures track simplification. Epsilon is in metres.
type SimplifyConfig struct {
	Algorithm string  `yaml:"algorithm" mapstructure:"algorithm"`
	Epsilon   float64 `yaml:"epsilon" mapstructure:"epsilon"`
}

// SmoothConfig configures the smoothing filters.
type SmoothConfig struct {
	Algorithm     string              `yaml:"algorithm" mapstructure:"algorithm"`
	Preprocess    bool                `yaml:"preprocess" mapstructure:"preprocess"`
	Hampel        HampelConfig        `yaml:"hampel" mapstructure:"hampel"`
	SavitzkyGolay SavitzkyGolayConfig `yaml:"savitzky_golay" mapstructure:"savitzky_golay"`
	Holt          HoltConfig          `yaml:"holt" mapstructure:"holt"`
}

// HampelConfig configures the Hampel filter.
type HampelConfig struct {
	HalfWindow int     `yaml:"half_window" mapstructure:"half_window"`
	Threshold  float64 `yaml:"threshold" mapstructure:"threshold"`
}

// SavitzkyGolayConfig configures the Savitzky-Golay smoother. A zero half
// window means half the input length.
type SavitzkyGolayConfig struct {
	Order      int `yaml:"order" mapstructure:"order"`
	HalfWindow int `yaml:"half_window" mapstructure:"half_window"`
}

// HoltConfig configures double-exponential smoothing.
type HoltConfig struct {
	Alpha    float64 `yaml:"alpha" mapstructure:"alpha"`
	Gamma    float64 `yaml:"gamma" mapstructure:"gamma"`
	Init     string  `yaml:"init" mapstructure:"init"`
	Forecast int     `yaml:"forecast" mapstructure:"forecast"`
}

// SRTMConfig configures elevation lookups.
type SRTMConfig struct {
	Mode    string `yaml:"mode" mapstructure:"mode"`
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst       int      `yaml:"burst" mapstructure:"burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// BatchConfig configures multi-file processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRACKCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("distance.algorithm", "haversine")
	v.SetDefault("simplify.algorithm", "douglas-peucker")
	v.SetDefault("simplify.epsilon", 50.0)
	v.SetDefault("smooth.algorithm", "savitzky-golay")
	v.SetDefault("smooth.preprocess", true)
	v.SetDefault("smooth.hampel.half_window", 3)
	v.SetDefault("smooth.hampel.threshold", 3.0)
	v.SetDefault("smooth.savitzky_golay.order", 2)
	v.SetDefault("smooth.savitzky_golay.half_window", 0)
	v.SetDefault("smooth.holt.alpha", 0.3)
	v.SetDefault("smooth.holt.gamma", 0.1)
	v.SetDefault("smooth.holt.init", "first-difference")
	v.SetDefault("smooth.holt.forecast", 0)
	v.SetDefault("srtm.mode", "average")
	v.SetDefault("srtm.data_dir", "./srtm")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.burst", 40)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("batch.concurrency", 4)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks every selector and numeric range and reports all problems
// in one error.
func (c *Config) Validate() error {
	var problems []string
	add := func(err error) {
		if err != nil {
			problems = append(problems, err.Error())
		}
	}

	_, err := c.DistanceAlgorithm()
	add(err)
	_, err = c.Simplifier()
	add(err)
	_, err = c.Smoother()
	add(err)
	_, err = c.SRTMMode()
	add(err)

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Server.RateLimit <= 0 {
		problems = append(problems, "server.rate_limit must be positive")
	}
	if c.Server.Burst < 1 {
		problems = append(problems, "server.burst must be at least 1")
	}
	if c.Batch.Concurrency < 1 {
		problems = append(problems, "batch.concurrency must be at least 1")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DistanceAlgorithm parses distance.algorithm.
func (c *Config) DistanceAlgorithm() (geodesy.Algorithm, error) {
	alg, err := geodesy.ParseAlgorithm(c.Distance.Algorithm)
	if err != nil {
		return 0, eris.Wrap(err, "distance.algorithm")
	}
	return alg, nil
}

// Simplifier builds the configured simplifier.
func (c *Config) Simplifier() (*simplify.Simplifier, error) {
	alg, err := simplify.ParseAlgorithm(c.Simplify.Algorithm)
	if err != nil {
		return nil, eris.Wrap(err, "simplify.algorithm")
	}
	s, err := simplify.NewSimplifier(alg, c.Simplify.Epsilon)
	if err != nil {
		return nil, eris.Wrap(err, "simplify.epsilon")
	}
	return s, nil
}

// SmoothParams translates the smooth section into core parameters.
func (c *Config) SmoothParams() (smooth.Config, error) {
	alg, err := smooth.ParseAlgorithm(c.Smooth.Algorithm)
	if err != nil {
		return smooth.Config{}, eris.Wrap(err, "smooth.algorithm")
	}
	trend, err := smooth.ParseTrendInit(c.Smooth.Holt.Init)
	if err != nil {
		return smooth.Config{}, eris.Wrap(err, "smooth.holt.init")
	}

	hampel := smooth.HampelParams{
		HalfWindow: c.Smooth.Hampel.HalfWindow,
		Threshold:  c.Smooth.Hampel.Threshold,
	}
	return smooth.Config{
		Algorithm: alg,
		Hampel:    hampel,
		SavitzkyGolay: smooth.SavitzkyGolayParams{
			Order:      c.Smooth.SavitzkyGolay.Order,
			HalfWindow: c.Smooth.SavitzkyGolay.HalfWindow,
			Preprocess: c.Smooth.Preprocess,
			Hampel:     hampel,
		},
		Holt: smooth.HoltParams{
			Alpha:    c.Smooth.Holt.Alpha,
			Gamma:    c.Smooth.Holt.Gamma,
			Init:     trend,
			Forecast: c.Smooth.Holt.Forecast,
		},
	}, nil
}

// Smoother builds the configured smoother.
func (c *Config) Smoother() (smooth.Smoother, error) {
	params, err := c.SmoothParams()
	if err != nil {
		return nil, err
	}
	s, err := smooth.New(params)
	if err != nil {
		return nil, eris.Wrap(err, "smooth")
	}
	return s, nil
}

// SRTMMode parses srtm.mode.
func (c *Config) SRTMMode() (srtm.Mode, error) {
	m, err := srtm.ParseMode(c.SRTM.Mode)
	if err != nil {
		return 0, eris.Wrap(err, "srtm.mode")
	}
	return m, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
