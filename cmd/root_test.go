package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trackcore/internal/config"
)

// withConfig installs c as the global config for the duration of the test.
func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

// testConfig returns a Config populated with the documented defaults.
func testConfig() *config.Config {
	c := &config.Config{}
	c.Log = config.LogConfig{Level: "info", Format: "json"}
	c.Distance.Algorithm = "haversine"
	c.Simplify.Algorithm = "douglas-peucker"
	c.Simplify.Epsilon = 50
	c.Smooth.Algorithm = "savitzky-golay"
	c.Smooth.Preprocess = true
	c.Smooth.Hampel.HalfWindow = 3
	c.Smooth.Hampel.Threshold = 3
	c.Smooth.SavitzkyGolay.Order = 2
	c.Smooth.Holt.Alpha = 0.3
	c.Smooth.Holt.Gamma = 0.1
	c.Smooth.Holt.Init = "first-difference"
	c.SRTM.Mode = "average"
	c.SRTM.DataDir = "./srtm"
	c.Server.Port = 8090
	c.Server.RateLimit = 20
	c.Server.Burst = 40
	c.Server.CORSOrigins = []string{"*"}
	c.Batch.Concurrency = 4
	return c
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"distance", "simplify", "smooth", "stats", "elevation", "nearest", "srtm", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "trackcore", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestSrtmCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range srtmCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"name", "info", "pack"} {
		assert.True(t, names[name], "srtm should have subcommand %q", name)
	}
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd  string
		flag string
		def  string
	}{
		{"simplify", "format", "summary"},
		{"simplify", "epsilon", "0"},
		{"simplify", "out", ""},
		{"smooth", "elevation-only", "false"},
		{"stats", "format", "text"},
		{"elevation", "mode", ""},
		{"nearest", "algorithm", ""},
		{"serve", "port", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.flag, func(t *testing.T) {
			c, _, err := rootCmd.Find([]string{tt.cmd})
			require.NoError(t, err)
			flag := c.Flags().Lookup(tt.flag)
			require.NotNil(t, flag, "%s should have --%s flag", tt.cmd, tt.flag)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}

func TestBuildDeps(t *testing.T) {
	c := testConfig()
	c.Distance.Algorithm = "vincenty"
	c.SRTM.DataDir = t.TempDir()

	deps, err := buildDeps(c)
	require.NoError(t, err)
	assert.Equal(t, "vincenty", deps.Distance.String())
	assert.InDelta(t, 50, deps.Simplifier.Epsilon(), 1e-9)
	assert.Equal(t, "savitzky-golay", deps.Smooth.Algorithm.String())
	require.NotNil(t, deps.Grid)
	assert.Equal(t, "average", deps.Grid.Mode().String())
	assert.InDelta(t, 20, deps.RateLimit, 1e-9)
	assert.Equal(t, 40, deps.Burst)
	assert.Equal(t, []string{"*"}, deps.CORSOrigins)
}

func TestBuildDeps_Invalid(t *testing.T) {
	c := testConfig()
	c.Simplify.Algorithm = "random"
	_, err := buildDeps(c)
	assert.Error(t, err)
}
