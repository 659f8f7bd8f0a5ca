package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// 관련 환경 변수를 비워서 기본값 경로를 탄다
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "REDIS_URL",
		"HEARTBEAT_TIMEOUT", "JOIN_GRACE",
		"RATING_SR_GAIN", "RATING_SR_LOSS", "RATING_CR_GAIN",
		"RATING_CR_LOSS", "RATING_CR_DISAGREE_LOSS", "RATING_FORFEIT_PENALTY",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatTimeout)
	assert.Equal(t, 45*time.Second, cfg.JoinGrace)

	assert.Equal(t, 5, cfg.SRGain)
	assert.Equal(t, 2, cfg.SRLoss)
	assert.Equal(t, 10, cfg.CRGain)
	assert.Equal(t, 5, cfg.CRLoss)
	assert.Equal(t, 8, cfg.CRDisagreeLoss)
	assert.InDelta(t, 0.05, cfg.ForfeitPenalty, 1e-9)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HEARTBEAT_TIMEOUT", "10s")
	t.Setenv("JOIN_GRACE", "20s")
	t.Setenv("RATING_SR_GAIN", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HeartbeatTimeout)
	assert.Equal(t, 20*time.Second, cfg.JoinGrace)
	assert.Equal(t, 7, cfg.SRGain)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("HEARTBEAT_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatTimeout)
}
