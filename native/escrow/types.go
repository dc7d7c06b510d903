package escrow

import (
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// DepositKind distinguishes the marketplace commitments a deposit can back.
type DepositKind uint8

const (
	DepositCompanyStake DepositKind = iota
	DepositApplicationStake
	DepositSigningBonus
)

// Valid reports whether the kind value is within the supported range.
func (k DepositKind) Valid() bool {
	switch k {
	case DepositCompanyStake, DepositApplicationStake, DepositSigningBonus:
		return true
	default:
		return false
	}
}

// String returns the canonical label used in event attributes.
func (k DepositKind) String() string {
	switch k {
	case DepositCompanyStake:
		return "company_stake"
	case DepositApplicationStake:
		return "application_stake"
	case DepositSigningBonus:
		return "signing_bonus"
	default:
		return "unknown"
	}
}

// Deposit is a single escrowed commitment. Records are append-only and keyed
// by a monotonically increasing identifier; Amount only ever decreases via
// partial release, and reaching zero forces Released.
type Deposit struct {
	ID          uint64
	Depositor   [20]byte
	Beneficiary [20]byte
	Amount      *big.Int
	ReleaseTime int64
	CreatedAt   int64
	Kind        DepositKind
	Released    bool
	Refunded    bool
}

// Clone returns a deep copy of the deposit so callers can safely mutate the
// copy without affecting the stored instance.
func (d *Deposit) Clone() *Deposit {
	if d == nil {
		return nil
	}
	clone := *d
	if d.Amount != nil {
		clone.Amount = new(big.Int).Set(d.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	return &clone
}

// SanitizeDeposit validates and normalises the supplied deposit, returning a
// cloned instance with a non-nil amount. The original value is not mutated.
func SanitizeDeposit(d *Deposit) (*Deposit, error) {
	if d == nil {
		return nil, fmt.Errorf("nil deposit")
	}
	clone := d.Clone()
	if clone.Amount.Sign() < 0 {
		return nil, fmt.Errorf("deposit amount must be non-negative")
	}
	if !clone.Kind.Valid() {
		return nil, fmt.Errorf("invalid deposit kind: %d", clone.Kind)
	}
	if clone.Released && clone.Refunded {
		return nil, fmt.Errorf("deposit cannot be both released and refunded")
	}
	return clone, nil
}

// Totals aggregates ledger-wide flows. Outstanding is always
// Deposited − Released − Refunded.
type Totals struct {
	Deposited *big.Int
	Released  *big.Int
	Refunded  *big.Int
}

// Clone deep-copies the totals with non-nil fields.
func (t *Totals) Clone() *Totals {
	clone := &Totals{Deposited: big.NewInt(0), Released: big.NewInt(0), Refunded: big.NewInt(0)}
	if t == nil {
		return clone
	}
	if t.Deposited != nil {
		clone.Deposited = new(big.Int).Set(t.Deposited)
	}
	if t.Released != nil {
		clone.Released = new(big.Int).Set(t.Released)
	}
	if t.Refunded != nil {
		clone.Refunded = new(big.Int).Set(t.Refunded)
	}
	return clone
}

// Outstanding returns the funds still held by the ledger vault.
func (t *Totals) Outstanding() *big.Int {
	clone := t.Clone()
	out := new(big.Int).Sub(clone.Deposited, clone.Released)
	return out.Sub(out, clone.Refunded)
}

const vaultSeed = "stakehire/escrow/vault"

// VaultAddress derives the deterministic module account holding all escrowed
// funds.
func VaultAddress() [20]byte {
	hash := ethcrypto.Keccak256([]byte(vaultSeed))
	var addr [20]byte
	copy(addr[:], hash[len(hash)-20:])
	return addr
}
