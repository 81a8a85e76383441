package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/clm")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 7090, cfg.HTTP.Port)
	assert.Equal(t, 5, cfg.Workflow.LegalDueDays)
	assert.Equal(t, 5, cfg.Workflow.FinanceDueDays)
	assert.Equal(t, 256, cfg.Workflow.AuditBufferSize)
	assert.Equal(t, 24, cfg.Workflow.ExpirySweepHours)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/clm")
	t.Setenv("JWT_ACCESS_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList(""))
	assert.Equal(t, []string{"a", "b"}, parseList(" a , b ,"))
}
