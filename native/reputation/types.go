package reputation

import "fmt"

// Tier is a discrete reputation rank derived from a numeric score.
type Tier uint8

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
	TierPlatinum
)

// Valid reports whether the tier value is within the supported range.
func (t Tier) Valid() bool {
	return t <= TierPlatinum
}

// String returns the canonical tier label.
func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierPlatinum:
		return "platinum"
	default:
		return "unknown"
	}
}

// TierForScore maps a score onto the highest tier whose cutoff it meets.
// Scores below the lowest cutoff still map to Bronze rather than "no badge";
// the source system behaved this way and downstream consumers rely on it.
func TierForScore(score uint64, thresholds [4]uint64) Tier {
	switch {
	case score >= thresholds[3]:
		return TierPlatinum
	case score >= thresholds[2]:
		return TierGold
	case score >= thresholds[1]:
		return TierSilver
	default:
		return TierBronze
	}
}

// UserReputation tracks the mutable score state for one identity.
type UserReputation struct {
	Score                  uint64
	TotalEndorsements      uint64
	SuccessfulHires        uint64
	SuccessfulApplications uint64
	CurrentTier            Tier
	HasBadge               bool
}

// Clone returns a copy of the reputation record.
func (r *UserReputation) Clone() *UserReputation {
	if r == nil {
		return &UserReputation{}
	}
	clone := *r
	return &clone
}

// Badge is an append-only record of a minted credential. Deactivated badges
// remain on record but cannot be transferred.
type Badge struct {
	ID       uint64
	Owner    [20]byte
	Tier     Tier
	Score    uint64
	MintedAt int64
	Active   bool
	URI      string
}

// Clone returns a copy of the badge record.
func (b *Badge) Clone() *Badge {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}

// Validate ensures the badge payload is well formed before persistence.
func (b *Badge) Validate() error {
	if b == nil {
		return fmt.Errorf("reputation: nil badge")
	}
	if b.Owner == ([20]byte{}) {
		return fmt.Errorf("reputation: badge owner required")
	}
	if !b.Tier.Valid() {
		return fmt.Errorf("reputation: invalid badge tier: %d", b.Tier)
	}
	return nil
}

// OutcomeKind distinguishes the lifecycle outcomes recorded against a score.
type OutcomeKind uint8

const (
	OutcomeHire OutcomeKind = iota
	OutcomeApplication
)

// Valid reports whether the outcome kind is within the supported range.
func (k OutcomeKind) Valid() bool {
	return k == OutcomeHire || k == OutcomeApplication
}

// String returns the canonical label used in event attributes.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeHire:
		return "hire"
	case OutcomeApplication:
		return "application"
	default:
		return "unknown"
	}
}
