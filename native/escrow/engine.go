package escrow

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"stakehire/config"
	"stakehire/core/events"
	"stakehire/core/types"
	nativecommon "stakehire/native/common"
)

var (
	errNilState = errors.New("escrow engine: state not configured")

	// ErrDepositNotFound marks lookups of unknown deposit identifiers.
	ErrDepositNotFound = errors.New("escrow: deposit not found")
	// ErrUnauthorized rejects callers that hold no role over the deposit.
	ErrUnauthorized = errors.New("escrow: caller not authorized")
	// ErrAmountNotPositive rejects zero or negative deposit amounts.
	ErrAmountNotPositive = errors.New("escrow: amount must be positive")
	// ErrReleaseTimeNotFuture rejects deposits whose release time is not
	// strictly after the current host time.
	ErrReleaseTimeNotFuture = errors.New("escrow: release time must be in the future")
	// ErrPartyRequired rejects deposits with a zero depositor or beneficiary.
	ErrPartyRequired = errors.New("escrow: depositor and beneficiary required")
	// ErrNotMatured marks release attempts before the deposit release time.
	ErrNotMatured = errors.New("escrow: deposit not yet releasable")
	// ErrAlreadyFinalized marks deposits that were already released or
	// refunded; terminal transitions never fire twice.
	ErrAlreadyFinalized = errors.New("escrow: deposit already finalized")
	// ErrAmountExceedsRemaining rejects partial releases above the remaining
	// deposit amount.
	ErrAmountExceedsRemaining = errors.New("escrow: amount exceeds remaining deposit")
	// ErrNotSuspended gates the emergency path to the paused ledger state.
	ErrNotSuspended = errors.New("escrow: ledger not suspended")
	// ErrNoEligibleDeposits is returned when an emergency withdrawal finds
	// nothing past the emergency delay window.
	ErrNoEligibleDeposits = errors.New("escrow: no deposits eligible for emergency withdrawal")
	// ErrInsufficientFunds marks a failed value transfer. The enclosing
	// operation must not partially apply.
	ErrInsufficientFunds = errors.New("escrow: insufficient balance for transfer")
	// ErrArithmetic marks balance bookkeeping that would underflow. Debiting
	// more than a balance holds is an invariant violation, never clamped.
	ErrArithmetic = errors.New("escrow: balance arithmetic underflow")
)

type engineState interface {
	DepositPut(*Deposit) error
	DepositGet(id uint64) (*Deposit, bool)
	DepositNextID() (uint64, error)
	DepositOwnerAppend(owner [20]byte, id uint64) error
	DepositOwnerList(owner [20]byte) ([]uint64, error)
	DepositorBalance(owner [20]byte) (*big.Int, error)
	SetDepositorBalance(owner [20]byte, amount *big.Int) error
	Totals() (*Totals, error)
	SetTotals(*Totals) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

type escrowEvent struct {
	evt *types.Event
}

func (e escrowEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e escrowEvent) Event() *types.Event { return e.evt }

// Engine implements the deposit ledger: create, release, partially release,
// refund and emergency-withdraw deposits independent of marketplace
// semantics. All state access flows through the configured backend; funds are
// held on the deterministic vault account.
type Engine struct {
	state          engineState
	emitter        events.Emitter
	pauses         nativecommon.PauseView
	vault          [20]byte
	marketplace    [20]byte
	admin          [20]byte
	emergencyDelay int64
	nowFn          func() int64
}

// NewEngine creates an escrow engine with a no-op emitter and the default
// emergency delay window.
func NewEngine() *Engine {
	return &Engine{
		emitter:        events.NoopEmitter{},
		vault:          VaultAddress(),
		emergencyDelay: config.DefaultEmergencyDelay,
		nowFn:          func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetMarketplace configures the designated marketplace collaborator allowed to
// create and split deposits.
func (e *Engine) SetMarketplace(addr [20]byte) { e.marketplace = addr }

// SetAdmin configures the administrator address.
func (e *Engine) SetAdmin(addr [20]byte) { e.admin = addr }

// SetPauses wires the pause registry consulted by mutating operations.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetEmergencyDelay overrides the delay added to a deposit release time before
// it becomes emergency-withdrawable.
func (e *Engine) SetEmergencyDelay(seconds int64) {
	if seconds > 0 {
		e.emergencyDelay = seconds
	}
}

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(escrowEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) paused() bool {
	return e != nil && e.pauses != nil && e.pauses.IsPaused(nativecommon.ModuleEscrow)
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func (e *Engine) loadDeposit(id uint64) (*Deposit, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	dep, ok := e.state.DepositGet(id)
	if !ok {
		return nil, ErrDepositNotFound
	}
	return dep, nil
}

func (e *Engine) transfer(from, to [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if amt.Sign() < 0 {
		return fmt.Errorf("escrow: negative transfer amount")
	}
	fromAcc, err := e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	toAcc, err := e.state.GetAccount(to[:])
	if err != nil {
		return err
	}
	fromAcc = types.EnsureAccount(fromAcc)
	toAcc = types.EnsureAccount(toAcc)
	if fromAcc.Balance.Cmp(amt) < 0 {
		return ErrInsufficientFunds
	}
	fromAcc.Balance = new(big.Int).Sub(fromAcc.Balance, amt)
	toAcc.Balance = new(big.Int).Add(toAcc.Balance, amt)
	if err := e.state.PutAccount(from[:], fromAcc); err != nil {
		return err
	}
	return e.state.PutAccount(to[:], toAcc)
}

// debitDepositor reduces the depositor's tracked balance, failing instead of
// wrapping when the balance cannot cover the amount.
func (e *Engine) debitDepositor(owner [20]byte, amount *big.Int) error {
	balance, err := e.state.DepositorBalance(owner)
	if err != nil {
		return err
	}
	balance = cloneBigInt(balance)
	amt := cloneBigInt(amount)
	if balance.Cmp(amt) < 0 {
		return ErrArithmetic
	}
	return e.state.SetDepositorBalance(owner, balance.Sub(balance, amt))
}

func (e *Engine) creditDepositor(owner [20]byte, amount *big.Int) error {
	balance, err := e.state.DepositorBalance(owner)
	if err != nil {
		return err
	}
	balance = cloneBigInt(balance)
	return e.state.SetDepositorBalance(owner, balance.Add(balance, cloneBigInt(amount)))
}

func (e *Engine) addTotals(deposited, released, refunded *big.Int) error {
	totals, err := e.state.Totals()
	if err != nil {
		return err
	}
	totals = totals.Clone()
	totals.Deposited.Add(totals.Deposited, cloneBigInt(deposited))
	totals.Released.Add(totals.Released, cloneBigInt(released))
	totals.Refunded.Add(totals.Refunded, cloneBigInt(refunded))
	return e.state.SetTotals(totals)
}

// CreateDeposit records a new deposit funded by the depositor and locked until
// the release time. Only the designated marketplace collaborator may create
// deposits, and only while the ledger is not suspended.
func (e *Engine) CreateDeposit(caller, depositor, beneficiary [20]byte, releaseTime int64, kind DepositKind, amount *big.Int) (*Deposit, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.paused() {
		return nil, nativecommon.ErrModulePaused
	}
	if caller != e.marketplace {
		return nil, ErrUnauthorized
	}
	amt := cloneBigInt(amount)
	if amt.Sign() <= 0 {
		return nil, ErrAmountNotPositive
	}
	if releaseTime <= e.now() {
		return nil, ErrReleaseTimeNotFuture
	}
	if depositor == ([20]byte{}) || beneficiary == ([20]byte{}) {
		return nil, ErrPartyRequired
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("escrow: invalid deposit kind: %d", kind)
	}
	// Collect the funds before recording anything: a failed collection must
	// leave no ledger state behind.
	if err := e.transfer(depositor, e.vault, amt); err != nil {
		return nil, err
	}
	id, err := e.state.DepositNextID()
	if err != nil {
		return nil, err
	}
	dep := &Deposit{
		ID:          id,
		Depositor:   depositor,
		Beneficiary: beneficiary,
		Amount:      amt,
		ReleaseTime: releaseTime,
		CreatedAt:   e.now(),
		Kind:        kind,
	}
	if err := e.state.DepositPut(dep); err != nil {
		return nil, err
	}
	if err := e.state.DepositOwnerAppend(depositor, id); err != nil {
		return nil, err
	}
	if err := e.creditDepositor(depositor, amt); err != nil {
		return nil, err
	}
	if err := e.addTotals(amt, nil, nil); err != nil {
		return nil, err
	}
	e.emit(NewDepositCreatedEvent(dep))
	return dep.Clone(), nil
}

// Release pays the full remaining deposit to the beneficiary once the release
// time has passed. Callable by the beneficiary, the marketplace collaborator
// or the administrator. A released or refunded deposit is rejected.
func (e *Engine) Release(id uint64, caller [20]byte) error {
	dep, err := e.loadDeposit(id)
	if err != nil {
		return err
	}
	if dep.Released || dep.Refunded {
		return ErrAlreadyFinalized
	}
	if e.now() < dep.ReleaseTime {
		return ErrNotMatured
	}
	if caller != dep.Beneficiary && caller != e.marketplace && caller != e.admin {
		return ErrUnauthorized
	}
	amount := cloneBigInt(dep.Amount)
	dep.Released = true
	if err := e.state.DepositPut(dep); err != nil {
		return err
	}
	if err := e.debitDepositor(dep.Depositor, amount); err != nil {
		return err
	}
	if err := e.addTotals(nil, amount, nil); err != nil {
		return err
	}
	if err := e.transfer(e.vault, dep.Beneficiary, amount); err != nil {
		return err
	}
	e.emit(NewDepositReleasedEvent(dep, amount))
	return nil
}

// PartialRelease pays part of the deposit to an arbitrary recipient, allowing
// a stake to be split between multiple parties over time. Marketplace-only.
// When the remaining amount reaches zero the deposit is marked released.
func (e *Engine) PartialRelease(id uint64, amount *big.Int, recipient [20]byte, caller [20]byte) error {
	dep, err := e.loadDeposit(id)
	if err != nil {
		return err
	}
	if caller != e.marketplace {
		return ErrUnauthorized
	}
	if dep.Released || dep.Refunded {
		return ErrAlreadyFinalized
	}
	amt := cloneBigInt(amount)
	if amt.Sign() <= 0 {
		return ErrAmountNotPositive
	}
	if amt.Cmp(dep.Amount) > 0 {
		return ErrAmountExceedsRemaining
	}
	if recipient == ([20]byte{}) {
		return ErrPartyRequired
	}
	dep.Amount = new(big.Int).Sub(dep.Amount, amt)
	if dep.Amount.Sign() == 0 {
		dep.Released = true
	}
	if err := e.state.DepositPut(dep); err != nil {
		return err
	}
	if err := e.debitDepositor(dep.Depositor, amt); err != nil {
		return err
	}
	if err := e.addTotals(nil, amt, nil); err != nil {
		return err
	}
	if err := e.transfer(e.vault, recipient, amt); err != nil {
		return err
	}
	e.emit(NewDepositPartialReleaseEvent(dep, recipient, amt))
	return nil
}

// Refund returns the remaining deposit to the original depositor. Marketplace
// or administrator only.
func (e *Engine) Refund(id uint64, caller [20]byte) error {
	dep, err := e.loadDeposit(id)
	if err != nil {
		return err
	}
	if caller != e.marketplace && caller != e.admin {
		return ErrUnauthorized
	}
	if dep.Released || dep.Refunded {
		return ErrAlreadyFinalized
	}
	amount := cloneBigInt(dep.Amount)
	dep.Refunded = true
	if err := e.state.DepositPut(dep); err != nil {
		return err
	}
	if err := e.debitDepositor(dep.Depositor, amount); err != nil {
		return err
	}
	if err := e.addTotals(nil, nil, amount); err != nil {
		return err
	}
	if err := e.transfer(e.vault, dep.Depositor, amount); err != nil {
		return err
	}
	e.emit(NewDepositRefundedEvent(dep, amount))
	return nil
}

// EmergencyWithdraw bulk-refunds every caller deposit whose release time plus
// the emergency delay has passed without the deposit being released or
// refunded. The path is only open while the ledger is suspended.
func (e *Engine) EmergencyWithdraw(caller [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if !e.paused() {
		return nil, ErrNotSuspended
	}
	ids, err := e.state.DepositOwnerList(caller)
	if err != nil {
		return nil, err
	}
	now := e.now()
	total := big.NewInt(0)
	withdrawn := make([]uint64, 0, len(ids))
	for _, id := range ids {
		dep, ok := e.state.DepositGet(id)
		if !ok {
			continue
		}
		if dep.Released || dep.Refunded {
			continue
		}
		if dep.ReleaseTime+e.emergencyDelay > now {
			continue
		}
		amount := cloneBigInt(dep.Amount)
		dep.Refunded = true
		if err := e.state.DepositPut(dep); err != nil {
			return nil, err
		}
		if err := e.debitDepositor(dep.Depositor, amount); err != nil {
			return nil, err
		}
		if err := e.addTotals(nil, nil, amount); err != nil {
			return nil, err
		}
		total.Add(total, amount)
		withdrawn = append(withdrawn, id)
	}
	if total.Sign() == 0 {
		return nil, ErrNoEligibleDeposits
	}
	if err := e.transfer(e.vault, caller, total); err != nil {
		return nil, err
	}
	e.emit(NewEmergencyWithdrawalEvent(caller, withdrawn, total))
	return total, nil
}

// GetDeposit returns the deposit record for the given identifier.
func (e *Engine) GetDeposit(id uint64) (*Deposit, error) {
	dep, err := e.loadDeposit(id)
	if err != nil {
		return nil, err
	}
	return dep.Clone(), nil
}

// DepositsOf lists the deposit identifiers created on behalf of a depositor.
func (e *Engine) DepositsOf(owner [20]byte) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.DepositOwnerList(owner)
}

// BalanceOf reports the depositor's outstanding tracked balance.
func (e *Engine) BalanceOf(owner [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	balance, err := e.state.DepositorBalance(owner)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(balance), nil
}

// LedgerTotals reports aggregate deposited/released/refunded flows.
func (e *Engine) LedgerTotals() (*Totals, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	totals, err := e.state.Totals()
	if err != nil {
		return nil, err
	}
	return totals.Clone(), nil
}
