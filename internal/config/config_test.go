package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.Flow.MaxSteps)
	assert.Equal(t, 3, cfg.Flow.ClickRetries)
	assert.Equal(t, 10, cfg.Search.MaxApplications)
	assert.Equal(t, 25, cfg.Search.MaxJobsPerPage)
	assert.Equal(t, ProviderGroq, cfg.Advisor.Provider)
	assert.Equal(t, 10*time.Second, cfg.Advisor.Timeout)
	assert.Equal(t, "profile.txt", cfg.Profile.Path)
	assert.Equal(t, "applied_jobs.json", cfg.History.Path)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max steps", func(c *Config) { c.Flow.MaxSteps = 0 }},
		{"zero click retries", func(c *Config) { c.Flow.ClickRetries = 0 }},
		{"zero max applications", func(c *Config) { c.Search.MaxApplications = 0 }},
		{"missing profile path", func(c *Config) { c.Profile.Path = "" }},
		{"missing history path", func(c *Config) { c.History.Path = "" }},
		{"non-positive advisor timeout", func(c *Config) { c.Advisor.Timeout = 0 }},
		{"unknown advisor provider", func(c *Config) { c.Advisor.Provider = "oracle" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
