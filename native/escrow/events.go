package escrow

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"stakehire/core/types"
)

const (
	EventTypeDepositCreated    = "escrow.deposit.created"
	EventTypeDepositReleased   = "escrow.deposit.released"
	EventTypeDepositPartial    = "escrow.deposit.partial_released"
	EventTypeDepositRefunded   = "escrow.deposit.refunded"
	EventTypeEmergencyWithdraw = "escrow.deposit.emergency_withdrawal"
)

// NewDepositCreatedEvent returns the canonical payload for a newly created
// deposit.
func NewDepositCreatedEvent(d *Deposit) *types.Event {
	attrs := depositAttributes(d)
	return &types.Event{Type: EventTypeDepositCreated, Attributes: attrs}
}

// NewDepositReleasedEvent returns the payload emitted when a deposit is paid
// out to its beneficiary in full.
func NewDepositReleasedEvent(d *Deposit, amount *big.Int) *types.Event {
	attrs := depositAttributes(d)
	attrs["released"] = amountString(amount)
	return &types.Event{Type: EventTypeDepositReleased, Attributes: attrs}
}

// NewDepositPartialReleaseEvent returns the payload emitted when part of a
// deposit is paid to a recipient.
func NewDepositPartialReleaseEvent(d *Deposit, recipient [20]byte, amount *big.Int) *types.Event {
	attrs := depositAttributes(d)
	attrs["recipient"] = hex.EncodeToString(recipient[:])
	attrs["released"] = amountString(amount)
	return &types.Event{Type: EventTypeDepositPartial, Attributes: attrs}
}

// NewDepositRefundedEvent returns the payload emitted when a deposit is
// returned to its depositor.
func NewDepositRefundedEvent(d *Deposit, amount *big.Int) *types.Event {
	attrs := depositAttributes(d)
	attrs["refunded"] = amountString(amount)
	return &types.Event{Type: EventTypeDepositRefunded, Attributes: attrs}
}

// NewEmergencyWithdrawalEvent returns the payload emitted for a bulk
// emergency refund.
func NewEmergencyWithdrawalEvent(caller [20]byte, ids []uint64, total *big.Int) *types.Event {
	attrs := map[string]string{
		"caller": hex.EncodeToString(caller[:]),
		"total":  amountString(total),
	}
	if len(ids) > 0 {
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, strconv.FormatUint(id, 10))
		}
		attrs["deposits"] = strings.Join(parts, ",")
	}
	return &types.Event{Type: EventTypeEmergencyWithdraw, Attributes: attrs}
}

func depositAttributes(d *Deposit) map[string]string {
	attrs := make(map[string]string)
	if d == nil {
		return attrs
	}
	sanitized, err := SanitizeDeposit(d)
	if err != nil {
		return attrs
	}
	attrs["id"] = strconv.FormatUint(sanitized.ID, 10)
	attrs["depositor"] = hex.EncodeToString(sanitized.Depositor[:])
	attrs["beneficiary"] = hex.EncodeToString(sanitized.Beneficiary[:])
	attrs["amount"] = sanitized.Amount.String()
	attrs["kind"] = sanitized.Kind.String()
	attrs["releaseTime"] = strconv.FormatInt(sanitized.ReleaseTime, 10)
	attrs["createdAt"] = strconv.FormatInt(sanitized.CreatedAt, 10)
	return attrs
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
