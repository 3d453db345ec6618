package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultServerConfigIsValid(t *testing.T) {
	cfg := DefaultServerConfig()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Tables, 4)
}

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load("/nonexistent/path/poker.hcl")
	require.NoError(t, err)
	require.Equal(t, DefaultServerConfig(), cfg)
}

func TestValidateRejectsBigBlindNotExceedingSmallBlind(t *testing.T) {
	cfg := &ServerConfig{Tables: []TableConfig{
		{Name: "bad", SmallBlind: 5, BigBlind: 5, MinBuyIn: 10, MaxBuyIn: 100, MaxSeats: 6},
	}}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsDuplicateTableNames(t *testing.T) {
	cfg := &ServerConfig{Tables: []TableConfig{
		{Name: "a", SmallBlind: 1, BigBlind: 2, MinBuyIn: 10, MaxBuyIn: 100, MaxSeats: 6},
		{Name: "a", SmallBlind: 1, BigBlind: 2, MinBuyIn: 10, MaxBuyIn: 100, MaxSeats: 6},
	}}
	require.Error(t, cfg.Validate())
}

func TestTickIntervalDefaultsTo500ms(t *testing.T) {
	s := ServerSettings{}
	require.Equal(t, int64(500), s.TickInterval().Milliseconds())
}
