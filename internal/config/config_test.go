package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/trackcore/internal/geodesy"
	"github.com/sells-group/trackcore/internal/simplify"
	"github.com/sells-group/trackcore/internal/smooth"
	"github.com/sells-group/trackcore/internal/srtm"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "haversine", cfg.Distance.Algorithm)
	assert.Equal(t, "douglas-peucker", cfg.Simplify.Algorithm)
	assert.InDelta(t, 50, cfg.Simplify.Epsilon, 0.001)
	assert.Equal(t, "savitzky-golay", cfg.Smooth.Algorithm)
	assert.True(t, cfg.Smooth.Preprocess)
	assert.Equal(t, 3, cfg.Smooth.Hampel.HalfWindow)
	assert.InDelta(t, 3.0, cfg.Smooth.Hampel.Threshold, 0.001)
	assert.Equal(t, 2, cfg.Smooth.SavitzkyGolay.Order)
	assert.Equal(t, 0, cfg.Smooth.SavitzkyGolay.HalfWindow)
	assert.InDelta(t, 0.3, cfg.Smooth.Holt.Alpha, 0.001)
	assert.InDelta(t, 0.1, cfg.Smooth.Holt.Gamma, 0.001)
	assert.Equal(t, "first-difference", cfg.Smooth.Holt.Init)
	assert.Equal(t, "average", cfg.SRTM.Mode)
	assert.Equal(t, "./srtm", cfg.SRTM.DataDir)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.InDelta(t, 20, cfg.Server.RateLimit, 0.001)
	assert.Equal(t, 40, cfg.Server.Burst)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 4, cfg.Batch.Concurrency)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
  format: console
simplify:
  algorithm: visvalingam-whyatt
  epsilon: 12.5
smooth:
  algorithm: holt
  holt:
    alpha: 0.6
    init: series
    forecast: 5
srtm:
  mode: nearest
  data_dir: /data/srtm
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "visvalingam-whyatt", cfg.Simplify.Algorithm)
	assert.InDelta(t, 12.5, cfg.Simplify.Epsilon, 0.001)
	assert.Equal(t, "holt", cfg.Smooth.Algorithm)
	assert.InDelta(t, 0.6, cfg.Smooth.Holt.Alpha, 0.001)
	assert.Equal(t, 5, cfg.Smooth.Holt.Forecast)
	assert.Equal(t, "nearest", cfg.SRTM.Mode)
	assert.Equal(t, "/data/srtm", cfg.SRTM.DataDir)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.1, cfg.Smooth.Holt.Gamma, 0.001)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
distance:
  algorithm: vincenty
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("TRACKCORE_DISTANCE_ALGORITHM", "planar")
	t.Setenv("TRACKCORE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "planar", cfg.Distance.Algorithm)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("TRACKCORE_SERVER_PORT", "3000")
	t.Setenv("TRACKCORE_SMOOTH_HAMPEL_HALF_WINDOW", "5")
	t.Setenv("TRACKCORE_SRTM_DATA_DIR", "/mnt/hgt")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Smooth.Hampel.HalfWindow)
	assert.Equal(t, "/mnt/hgt", cfg.SRTM.DataDir)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Distance.Algorithm = "haversine"
	cfg.Simplify.Algorithm = "douglas-peucker"
	cfg.Simplify.Epsilon = 50
	cfg.Smooth.Algorithm = "savitzky-golay"
	cfg.Smooth.Preprocess = true
	cfg.Smooth.Hampel.HalfWindow = 3
	cfg.Smooth.Hampel.Threshold = 3
	cfg.Smooth.SavitzkyGolay.Order = 2
	cfg.Smooth.Holt.Alpha = 0.3
	cfg.Smooth.Holt.Gamma = 0.1
	cfg.Smooth.Holt.Init = "first-difference"
	cfg.SRTM.Mode = "average"
	cfg.Server.Port = 8090
	cfg.Server.RateLimit = 20
	cfg.Server.Burst = 40
	cfg.Batch.Concurrency = 4
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"distance", func(c *Config) { c.Distance.Algorithm = "manhattan" }, "distance.algorithm"},
		{"simplify algorithm", func(c *Config) { c.Simplify.Algorithm = "random" }, "simplify.algorithm"},
		{"simplify epsilon", func(c *Config) { c.Simplify.Epsilon = -1 }, "simplify.epsilon"},
		{"smooth algorithm", func(c *Config) { c.Smooth.Algorithm = "kalman" }, "smooth.algorithm"},
		{"smooth order", func(c *Config) { c.Smooth.SavitzkyGolay.Order = 0 }, "savitzky-golay order"},
		{"holt alpha", func(c *Config) {
			c.Smooth.Algorithm = "holt"
			c.Smooth.Holt.Alpha = 2
		}, "holt alpha"},
		{"holt init", func(c *Config) { c.Smooth.Holt.Init = "guess" }, "smooth.holt.init"},
		{"srtm mode", func(c *Config) { c.SRTM.Mode = "bicubic" }, "srtm.mode"},
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"rate", func(c *Config) { c.Server.RateLimit = 0 }, "server.rate_limit"},
		{"burst", func(c *Config) { c.Server.Burst = 0 }, "server.burst"},
		{"concurrency", func(c *Config) { c.Batch.Concurrency = 0 }, "batch.concurrency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0
	cfg.Batch.Concurrency = 0
	cfg.SRTM.Mode = "bicubic"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "batch.concurrency")
	assert.Contains(t, err.Error(), "srtm.mode")
}

func TestTranslations(t *testing.T) {
	cfg := validDefaults()
	cfg.Distance.Algorithm = "vincenty"
	cfg.Simplify.Algorithm = "reumann-witkam"
	cfg.Simplify.Epsilon = 7
	cfg.SRTM.Mode = "nearest"

	alg, err := cfg.DistanceAlgorithm()
	require.NoError(t, err)
	assert.Equal(t, geodesy.Vincenty, alg)

	s, err := cfg.Simplifier()
	require.NoError(t, err)
	assert.Equal(t, simplify.ReumannWitkam, s.Algorithm())
	assert.InDelta(t, 7, s.Epsilon(), 0.001)

	mode, err := cfg.SRTMMode()
	require.NoError(t, err)
	assert.Equal(t, srtm.NearestOnly, mode)

	params, err := cfg.SmoothParams()
	require.NoError(t, err)
	assert.Equal(t, smooth.SavitzkyGolay, params.Algorithm)
	assert.Equal(t, 2, params.SavitzkyGolay.Order)
	assert.True(t, params.SavitzkyGolay.Preprocess)
	assert.Equal(t, 3, params.SavitzkyGolay.Hampel.HalfWindow)
	assert.Equal(t, smooth.FirstDifference, params.Holt.Init)

	sm, err := cfg.Smoother()
	require.NoError(t, err)
	assert.IsType(t, &smooth.SavitzkyGolayFilter{}, sm)
}
