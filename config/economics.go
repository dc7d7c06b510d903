package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Basis point math denominator shared by every fee split in the marketplace.
const BpsDenominator = 10_000

// Duration windows expressed in seconds of host time.
const (
	DefaultJobDuration         = int64(30 * 24 * 60 * 60)
	DefaultReviewDeadline      = int64(7 * 24 * 60 * 60)
	DefaultApplicationCooldown = int64(60 * 60)
	DefaultEmergencyDelay      = int64(90 * 24 * 60 * 60)
)

// Default fee splits in basis points.
const (
	DefaultHiredRefundBps    = uint32(8_000)
	DefaultReviewedRefundBps = uint32(5_000)
	DefaultExpiredPenaltyBps = uint32(5_000)
	// DefaultPlatformFeeBps is reserved for a future listing fee; it is carried
	// in the config surface but no transition charges it yet.
	DefaultPlatformFeeBps = uint32(250)
)

// Economics bundles every tunable economic parameter of the marketplace. The
// struct is immutable once handed to an engine; alternate values are supplied
// at construction (typically from a TOML file) rather than mutated at runtime.
type Economics struct {
	// Stake formula inputs, denominated in the smallest native unit.
	BaseStake          *big.Int
	FollowerMultiplier *big.Int
	SeniorBonus        *big.Int
	MinApplicationFee  *big.Int

	// Windows in seconds.
	JobDuration         int64
	ReviewDeadline      int64
	ApplicationCooldown int64
	EmergencyDelay      int64

	// Fee splits in basis points.
	HiredRefundBps    uint32
	ReviewedRefundBps uint32
	ExpiredPenaltyBps uint32
	PlatformFeeBps    uint32

	// Badge score cutoffs ordered Bronze, Silver, Gold, Platinum.
	BadgeThresholds [4]uint64
}

// DefaultEconomics returns the production parameter set. Amounts follow the
// 10^18 base-unit convention: 0.01 base stake, 0.00001 per thousand followers,
// 0.005 senior bonus, 0.001 minimum application fee.
func DefaultEconomics() *Economics {
	return &Economics{
		BaseStake:           mustParseAmount("10000000000000000"),
		FollowerMultiplier:  mustParseAmount("10000000000000"),
		SeniorBonus:         mustParseAmount("5000000000000000"),
		MinApplicationFee:   mustParseAmount("1000000000000000"),
		JobDuration:         DefaultJobDuration,
		ReviewDeadline:      DefaultReviewDeadline,
		ApplicationCooldown: DefaultApplicationCooldown,
		EmergencyDelay:      DefaultEmergencyDelay,
		HiredRefundBps:      DefaultHiredRefundBps,
		ReviewedRefundBps:   DefaultReviewedRefundBps,
		ExpiredPenaltyBps:   DefaultExpiredPenaltyBps,
		PlatformFeeBps:      DefaultPlatformFeeBps,
		BadgeThresholds:     [4]uint64{100, 500, 1_000, 5_000},
	}
}

// Clone deep-copies the parameter set so engines can hold it without aliasing
// caller-owned big integers.
func (e *Economics) Clone() *Economics {
	if e == nil {
		return nil
	}
	clone := *e
	clone.BaseStake = cloneAmount(e.BaseStake)
	clone.FollowerMultiplier = cloneAmount(e.FollowerMultiplier)
	clone.SeniorBonus = cloneAmount(e.SeniorBonus)
	clone.MinApplicationFee = cloneAmount(e.MinApplicationFee)
	return &clone
}

// Validate checks the parameter set for internally inconsistent values.
func (e *Economics) Validate() error {
	if e == nil {
		return fmt.Errorf("config: economics not configured")
	}
	for name, amt := range map[string]*big.Int{
		"BaseStake":          e.BaseStake,
		"FollowerMultiplier": e.FollowerMultiplier,
		"SeniorBonus":        e.SeniorBonus,
		"MinApplicationFee":  e.MinApplicationFee,
	} {
		if amt == nil || amt.Sign() < 0 {
			return fmt.Errorf("config: %s must be a non-negative amount", name)
		}
	}
	if e.BaseStake.Sign() == 0 {
		return fmt.Errorf("config: BaseStake must be positive")
	}
	if e.MinApplicationFee.Sign() == 0 {
		return fmt.Errorf("config: MinApplicationFee must be positive")
	}
	for name, window := range map[string]int64{
		"JobDuration":         e.JobDuration,
		"ReviewDeadline":      e.ReviewDeadline,
		"ApplicationCooldown": e.ApplicationCooldown,
		"EmergencyDelay":      e.EmergencyDelay,
	} {
		if window <= 0 {
			return fmt.Errorf("config: %s must be positive", name)
		}
	}
	for name, bps := range map[string]uint32{
		"HiredRefundBps":    e.HiredRefundBps,
		"ReviewedRefundBps": e.ReviewedRefundBps,
		"ExpiredPenaltyBps": e.ExpiredPenaltyBps,
		"PlatformFeeBps":    e.PlatformFeeBps,
	} {
		if bps > BpsDenominator {
			return fmt.Errorf("config: %s out of range: %d", name, bps)
		}
	}
	for i := 1; i < len(e.BadgeThresholds); i++ {
		if e.BadgeThresholds[i] <= e.BadgeThresholds[i-1] {
			return fmt.Errorf("config: badge thresholds must be strictly increasing")
		}
	}
	return nil
}

// economicsFile mirrors Economics with TOML-friendly field types. Amounts are
// decimal strings so they survive values beyond float precision.
type economicsFile struct {
	BaseStake           string    `toml:"BaseStake"`
	FollowerMultiplier  string    `toml:"FollowerMultiplier"`
	SeniorBonus         string    `toml:"SeniorBonus"`
	MinApplicationFee   string    `toml:"MinApplicationFee"`
	JobDuration         int64     `toml:"JobDuration"`
	ReviewDeadline      int64     `toml:"ReviewDeadline"`
	ApplicationCooldown int64     `toml:"ApplicationCooldown"`
	EmergencyDelay      int64     `toml:"EmergencyDelay"`
	HiredRefundBps      uint32    `toml:"HiredRefundBps"`
	ReviewedRefundBps   uint32    `toml:"ReviewedRefundBps"`
	ExpiredPenaltyBps   uint32    `toml:"ExpiredPenaltyBps"`
	PlatformFeeBps      uint32    `toml:"PlatformFeeBps"`
	BadgeThresholds     []uint64  `toml:"BadgeThresholds"`
}

// LoadEconomics reads a TOML parameter file, overlaying it on the defaults so
// partial files remain valid. A missing file yields the default set.
func LoadEconomics(path string) (*Economics, error) {
	cfg := DefaultEconomics()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	var file economicsFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := applyEconomicsFile(cfg, &file); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEconomicsFile(cfg *Economics, file *economicsFile) error {
	if file == nil {
		return nil
	}
	amounts := []struct {
		name  string
		raw   string
		field **big.Int
	}{
		{"BaseStake", file.BaseStake, &cfg.BaseStake},
		{"FollowerMultiplier", file.FollowerMultiplier, &cfg.FollowerMultiplier},
		{"SeniorBonus", file.SeniorBonus, &cfg.SeniorBonus},
		{"MinApplicationFee", file.MinApplicationFee, &cfg.MinApplicationFee},
	}
	for _, entry := range amounts {
		trimmed := strings.TrimSpace(entry.raw)
		if trimmed == "" {
			continue
		}
		parsed, ok := new(big.Int).SetString(trimmed, 10)
		if !ok {
			return fmt.Errorf("config: invalid %s amount %q", entry.name, entry.raw)
		}
		*entry.field = parsed
	}
	if file.JobDuration != 0 {
		cfg.JobDuration = file.JobDuration
	}
	if file.ReviewDeadline != 0 {
		cfg.ReviewDeadline = file.ReviewDeadline
	}
	if file.ApplicationCooldown != 0 {
		cfg.ApplicationCooldown = file.ApplicationCooldown
	}
	if file.EmergencyDelay != 0 {
		cfg.EmergencyDelay = file.EmergencyDelay
	}
	if file.HiredRefundBps != 0 {
		cfg.HiredRefundBps = file.HiredRefundBps
	}
	if file.ReviewedRefundBps != 0 {
		cfg.ReviewedRefundBps = file.ReviewedRefundBps
	}
	if file.ExpiredPenaltyBps != 0 {
		cfg.ExpiredPenaltyBps = file.ExpiredPenaltyBps
	}
	if file.PlatformFeeBps != 0 {
		cfg.PlatformFeeBps = file.PlatformFeeBps
	}
	if len(file.BadgeThresholds) > 0 {
		if len(file.BadgeThresholds) != len(cfg.BadgeThresholds) {
			return fmt.Errorf("config: BadgeThresholds requires exactly %d entries", len(cfg.BadgeThresholds))
		}
		copy(cfg.BadgeThresholds[:], file.BadgeThresholds)
	}
	return nil
}

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func mustParseAmount(raw string) *big.Int {
	parsed, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		panic(fmt.Sprintf("config: invalid default amount %q", raw))
	}
	return parsed
}
