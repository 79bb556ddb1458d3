package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScope/internal/config"
)

func TestLoadConfig_FlagOverrides(t *testing.T) {
	cmd, f := buildRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--ticker", "MSFT",
		"--start", "2021-01-01",
		"--end", "2021-07-01",
		"--window", "20",
		"--no-show",
	}))

	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)

	assert.Equal(t, "MSFT", cfg.Analysis.Symbol)
	assert.Equal(t, "2021-01-01", cfg.Analysis.Start)
	assert.Equal(t, "2021-07-01", cfg.Analysis.End)
	assert.Equal(t, 20, cfg.Analysis.Window)
	assert.True(t, cfg.PlotEnabled())
	assert.False(t, cfg.PlotShow())
}

func TestLoadConfig_InvalidWindow(t *testing.T) {
	cmd, f := buildRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--window", "0",
	}))
	_, err := loadConfig(cmd, f)
	assert.Error(t, err)
}

func TestNewFetcher(t *testing.T) {
	tests := map[string]string{
		config.ProviderYahoo:     "yahoo",
		config.ProviderFinanceGo: "finance-go",
		config.ProviderREST:      "rest",
		config.ProviderMock:      "mock",
	}
	for provider, want := range tests {
		cfg := &config.Config{}
		cfg.DataSource.Provider = provider
		cfg.DataSource.BaseURL = "http://bars.local"
		assert.Equal(t, want, newFetcher(cfg).Name(), provider)
	}
}

func TestRootCmd_MockRun(t *testing.T) {
	t.Setenv("DATA_PROVIDER", config.ProviderMock)
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--no-plot",
	})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "AAPL | ")
	assert.Contains(t, out.String(), "Moving_Average")
	assert.Contains(t, out.String(), "AAPL summary")
}

func TestRootCmd_EmptyRangeFails(t *testing.T) {
	t.Setenv("DATA_PROVIDER", config.ProviderMock)
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--start", "2022-01-01",
		"--end", "2022-01-01",
		"--no-plot",
	})
	assert.Error(t, cmd.Execute())
}
