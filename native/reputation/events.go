package reputation

import (
	"encoding/hex"
	"strconv"

	"stakehire/core/types"
)

const (
	EventTypeScoreUpdated     = "reputation.score.updated"
	EventTypeEndorsementAdded = "reputation.endorsement.added"
	EventTypeOutcomeRecorded  = "reputation.outcome.recorded"
	EventTypeBadgeMinted      = "reputation.badge.minted"
	EventTypeBadgeActivation  = "reputation.badge.activation"
	EventTypeBadgeTransferred = "reputation.badge.transferred"
)

// NewScoreUpdatedEvent returns the canonical payload for a score change.
func NewScoreUpdatedEvent(subject [20]byte, rep *UserReputation) *types.Event {
	attrs := reputationAttributes(subject, rep)
	return &types.Event{Type: EventTypeScoreUpdated, Attributes: attrs}
}

// NewEndorsementEvent returns the payload emitted when an endorsement lands.
func NewEndorsementEvent(endorser, subject [20]byte, weight uint64, rep *UserReputation) *types.Event {
	attrs := reputationAttributes(subject, rep)
	attrs["endorser"] = hex.EncodeToString(endorser[:])
	attrs["weight"] = strconv.FormatUint(weight, 10)
	return &types.Event{Type: EventTypeEndorsementAdded, Attributes: attrs}
}

// NewOutcomeRecordedEvent returns the payload emitted for a lifecycle outcome.
func NewOutcomeRecordedEvent(subject [20]byte, kind OutcomeKind, success bool, rep *UserReputation) *types.Event {
	attrs := reputationAttributes(subject, rep)
	attrs["kind"] = kind.String()
	attrs["success"] = strconv.FormatBool(success)
	return &types.Event{Type: EventTypeOutcomeRecorded, Attributes: attrs}
}

// NewBadgeMintedEvent returns the payload emitted when a badge is minted.
func NewBadgeMintedEvent(b *Badge) *types.Event {
	attrs := badgeAttributes(b)
	return &types.Event{Type: EventTypeBadgeMinted, Attributes: attrs}
}

// NewBadgeActivationEvent returns the payload emitted when a badge is
// deactivated or reactivated.
func NewBadgeActivationEvent(b *Badge) *types.Event {
	attrs := badgeAttributes(b)
	return &types.Event{Type: EventTypeBadgeActivation, Attributes: attrs}
}

// NewBadgeTransferredEvent returns the payload emitted when a badge changes
// hands.
func NewBadgeTransferredEvent(b *Badge, from [20]byte) *types.Event {
	attrs := badgeAttributes(b)
	attrs["from"] = hex.EncodeToString(from[:])
	return &types.Event{Type: EventTypeBadgeTransferred, Attributes: attrs}
}

func reputationAttributes(subject [20]byte, rep *UserReputation) map[string]string {
	attrs := map[string]string{
		"subject": hex.EncodeToString(subject[:]),
	}
	if rep == nil {
		return attrs
	}
	attrs["score"] = strconv.FormatUint(rep.Score, 10)
	attrs["endorsements"] = strconv.FormatUint(rep.TotalEndorsements, 10)
	attrs["tier"] = rep.CurrentTier.String()
	attrs["hasBadge"] = strconv.FormatBool(rep.HasBadge)
	return attrs
}

func badgeAttributes(b *Badge) map[string]string {
	attrs := make(map[string]string)
	if b == nil {
		return attrs
	}
	attrs["id"] = strconv.FormatUint(b.ID, 10)
	attrs["owner"] = hex.EncodeToString(b.Owner[:])
	attrs["tier"] = b.Tier.String()
	attrs["score"] = strconv.FormatUint(b.Score, 10)
	attrs["mintedAt"] = strconv.FormatInt(b.MintedAt, 10)
	attrs["active"] = strconv.FormatBool(b.Active)
	if b.URI != "" {
		attrs["uri"] = b.URI
	}
	return attrs
}
