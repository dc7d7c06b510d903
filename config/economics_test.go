package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultEconomicsValid(t *testing.T) {
	cfg := DefaultEconomics()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "10000000000000000", cfg.BaseStake.String())
	require.Equal(t, "10000000000000", cfg.FollowerMultiplier.String())
	require.Equal(t, "5000000000000000", cfg.SeniorBonus.String())
	require.Equal(t, "1000000000000000", cfg.MinApplicationFee.String())
	require.Equal(t, DefaultJobDuration, cfg.JobDuration)
	require.Equal(t, [4]uint64{100, 500, 1_000, 5_000}, cfg.BadgeThresholds)
}

func TestEconomicsCloneDoesNotAlias(t *testing.T) {
	cfg := DefaultEconomics()
	clone := cfg.Clone()
	clone.BaseStake.Add(clone.BaseStake, big.NewInt(1))
	require.NotEqual(t, cfg.BaseStake.String(), clone.BaseStake.String())
}

func TestEconomicsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Economics)
	}{
		{"zero base stake", func(c *Economics) { c.BaseStake = big.NewInt(0) }},
		{"nil amount", func(c *Economics) { c.SeniorBonus = nil }},
		{"negative amount", func(c *Economics) { c.MinApplicationFee = big.NewInt(-1) }},
		{"zero window", func(c *Economics) { c.ApplicationCooldown = 0 }},
		{"negative window", func(c *Economics) { c.JobDuration = -1 }},
		{"bps over denominator", func(c *Economics) { c.HiredRefundBps = 10_001 }},
		{"flat thresholds", func(c *Economics) { c.BadgeThresholds = [4]uint64{100, 100, 1_000, 5_000} }},
		{"descending thresholds", func(c *Economics) { c.BadgeThresholds = [4]uint64{500, 100, 1_000, 5_000} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultEconomics()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "economics.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadEconomicsMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadEconomics(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, DefaultEconomics().BaseStake.String(), cfg.BaseStake.String())
}

func TestLoadEconomicsOverlaysPartialFile(t *testing.T) {
	path := writeTempConfig(t, `
BaseStake = "20000000000000000"
ApplicationCooldown = 7200
HiredRefundBps = 9000
BadgeThresholds = [200, 600, 2000, 9000]
`)
	cfg, err := LoadEconomics(path)
	require.NoError(t, err)
	require.Equal(t, "20000000000000000", cfg.BaseStake.String())
	require.Equal(t, int64(7_200), cfg.ApplicationCooldown)
	require.Equal(t, uint32(9_000), cfg.HiredRefundBps)
	require.Equal(t, [4]uint64{200, 600, 2_000, 9_000}, cfg.BadgeThresholds)
	// Untouched fields keep their defaults.
	require.Equal(t, DefaultEconomics().MinApplicationFee.String(), cfg.MinApplicationFee.String())
	require.Equal(t, DefaultJobDuration, cfg.JobDuration)
}

func TestLoadEconomicsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"malformed amount", `BaseStake = "one billion"`},
		{"wrong threshold arity", `BadgeThresholds = [100, 500]`},
		{"unordered thresholds", `BadgeThresholds = [500, 100, 1000, 5000]`},
		{"bps out of range", `ExpiredPenaltyBps = 20000`},
		{"not toml", `{"BaseStake": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadEconomics(writeTempConfig(t, tc.contents))
			require.Error(t, err)
		})
	}
}
