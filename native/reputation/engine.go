package reputation

import (
	"errors"
	"strings"
	"time"

	"stakehire/config"
	"stakehire/core/events"
	"stakehire/core/types"
	nativecommon "stakehire/native/common"
)

// Score delta applied per successful hire or application outcome.
const successScoreDelta = 10

var (
	errNilState = errors.New("reputation engine: state not configured")

	// ErrUnauthorized rejects callers without authority over score state.
	ErrUnauthorized = errors.New("reputation: caller not authorized")
	// ErrSelfEndorsement rejects endorsements of the endorser's own identity.
	ErrSelfEndorsement = errors.New("reputation: self-endorsement rejected")
	// ErrInvalidWeight rejects non-positive endorsement weights.
	ErrInvalidWeight = errors.New("reputation: endorsement weight must be positive")
	// ErrBadgeNotFound marks lookups of unknown badge identifiers.
	ErrBadgeNotFound = errors.New("reputation: badge not found")
	// ErrBadgeInactive blocks transfers of deactivated badges.
	ErrBadgeInactive = errors.New("reputation: badge deactivated")
	// ErrInvalidOutcome rejects unknown outcome kinds.
	ErrInvalidOutcome = errors.New("reputation: invalid outcome kind")
	// ErrInvalidTier rejects tier values outside the supported range.
	ErrInvalidTier = errors.New("reputation: invalid tier")
)

type engineState interface {
	ReputationGet(addr [20]byte) (*UserReputation, bool)
	ReputationPut(addr [20]byte, rep *UserReputation) error
	BadgePut(*Badge) error
	BadgeGet(id uint64) (*Badge, bool)
	BadgeNextID() (uint64, error)
	BadgeOwnerAppend(owner [20]byte, id uint64) error
	BadgeOwnerList(owner [20]byte) ([]uint64, error)
}

type reputationEvent struct {
	evt *types.Event
}

func (e reputationEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e reputationEvent) Event() *types.Event { return e.evt }

// Engine maintains per-identity scores, endorsement totals and the badge-tier
// assignment derived from them. Badges are minted through a single flattened
// tier recomputation invoked once per mutating entry point; no mutating
// operation re-enters another.
type Engine struct {
	state      engineState
	emitter    events.Emitter
	pauses     nativecommon.PauseView
	admin      [20]byte
	authority  [20]byte
	thresholds [4]uint64
	tierURIs   map[Tier]string
	nowFn      func() int64
}

// NewEngine creates a reputation engine with the default badge thresholds and
// a no-op emitter.
func NewEngine() *Engine {
	return &Engine{
		emitter:    events.NoopEmitter{},
		thresholds: DefaultThresholds(),
		tierURIs:   make(map[Tier]string),
		nowFn:      func() int64 { return time.Now().Unix() },
	}
}

// DefaultThresholds reads the badge score cutoffs from the shared economics
// defaults so the reputation engine and the marketplace agree on them.
func DefaultThresholds() [4]uint64 {
	return config.DefaultEconomics().BadgeThresholds
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAdmin configures the administrator address.
func (e *Engine) SetAdmin(addr [20]byte) { e.admin = addr }

// SetPauses wires the pause registry consulted by every mutating operation.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetAuthority configures the module (typically the marketplace) permitted to
// drive score mutations alongside the administrator.
func (e *Engine) SetAuthority(addr [20]byte) { e.authority = addr }

// SetThresholds overrides the badge score cutoffs.
func (e *Engine) SetThresholds(thresholds [4]uint64) { e.thresholds = thresholds }

// SetNowFunc overrides the time source used for badge mint timestamps.
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
	e.emitter.Emit(reputationEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) guard() error {
	return nativecommon.Guard(e.pauses, nativecommon.ModuleReputation)
}

func (e *Engine) authorized(caller [20]byte) bool {
	if caller == ([20]byte{}) {
		return false
	}
	return caller == e.admin || caller == e.authority
}

func (e *Engine) loadOrInit(subject [20]byte) *UserReputation {
	if rep, ok := e.state.ReputationGet(subject); ok {
		return rep.Clone()
	}
	return &UserReputation{}
}

// maybeMint recomputes the subject's tier and mints a badge when the subject
// has none or the computed tier strictly exceeds the current one. Prior badge
// records are left intact, building a multi-badge history per identity.
func (e *Engine) maybeMint(subject [20]byte, rep *UserReputation) error {
	tier := TierForScore(rep.Score, e.thresholds)
	if rep.HasBadge && tier <= rep.CurrentTier {
		return nil
	}
	id, err := e.state.BadgeNextID()
	if err != nil {
		return err
	}
	badge := &Badge{
		ID:       id,
		Owner:    subject,
		Tier:     tier,
		Score:    rep.Score,
		MintedAt: e.now(),
		Active:   true,
		URI:      e.tierURIs[tier],
	}
	if err := badge.Validate(); err != nil {
		return err
	}
	if err := e.state.BadgePut(badge); err != nil {
		return err
	}
	if err := e.state.BadgeOwnerAppend(subject, id); err != nil {
		return err
	}
	rep.CurrentTier = tier
	rep.HasBadge = true
	e.emit(NewBadgeMintedEvent(badge))
	return nil
}

// UpdateScore sets the subject's absolute score and mints a badge if the tier
// increased. Restricted to the administrator and the configured authority.
func (e *Engine) UpdateScore(caller, subject [20]byte, newScore uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.guard(); err != nil {
		return err
	}
	if !e.authorized(caller) {
		return ErrUnauthorized
	}
	rep := e.loadOrInit(subject)
	rep.Score = newScore
	if err := e.maybeMint(subject, rep); err != nil {
		return err
	}
	if err := e.state.ReputationPut(subject, rep); err != nil {
		return err
	}
	e.emit(NewScoreUpdatedEvent(subject, rep))
	return nil
}

// AddEndorsement credits the subject with twice the endorsement weight in
// score and the raw weight in endorsement total. Self-endorsement is
// rejected; anyone else may endorse.
func (e *Engine) AddEndorsement(endorser, subject [20]byte, weight uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.guard(); err != nil {
		return err
	}
	if weight == 0 {
		return ErrInvalidWeight
	}
	if endorser == subject {
		return ErrSelfEndorsement
	}
	rep := e.loadOrInit(subject)
	rep.Score += weight * 2
	rep.TotalEndorsements += weight
	if err := e.maybeMint(subject, rep); err != nil {
		return err
	}
	if err := e.state.ReputationPut(subject, rep); err != nil {
		return err
	}
	e.emit(NewEndorsementEvent(endorser, subject, weight, rep))
	return nil
}

// RecordOutcome increments the hire or application counter for the subject
// and credits the fixed score delta on success.
func (e *Engine) RecordOutcome(caller, subject [20]byte, kind OutcomeKind, success bool) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.guard(); err != nil {
		return err
	}
	if !e.authorized(caller) {
		return ErrUnauthorized
	}
	if !kind.Valid() {
		return ErrInvalidOutcome
	}
	rep := e.loadOrInit(subject)
	if success {
		switch kind {
		case OutcomeHire:
			rep.SuccessfulHires++
		case OutcomeApplication:
			rep.SuccessfulApplications++
		}
		rep.Score += successScoreDelta
	}
	if err := e.maybeMint(subject, rep); err != nil {
		return err
	}
	if err := e.state.ReputationPut(subject, rep); err != nil {
		return err
	}
	e.emit(NewOutcomeRecordedEvent(subject, kind, success, rep))
	return nil
}

// Penalize reduces the subject's score by delta, flooring at zero. Penalties
// never trigger a mint.
func (e *Engine) Penalize(caller, subject [20]byte, delta uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.guard(); err != nil {
		return err
	}
	if !e.authorized(caller) {
		return ErrUnauthorized
	}
	rep := e.loadOrInit(subject)
	if rep.Score > delta {
		rep.Score -= delta
	} else {
		rep.Score = 0
	}
	if err := e.state.ReputationPut(subject, rep); err != nil {
		return err
	}
	e.emit(NewScoreUpdatedEvent(subject, rep))
	return nil
}

// SetTierURI configures the metadata reference attached to future badges of
// the given tier. Administrator only.
func (e *Engine) SetTierURI(caller [20]byte, tier Tier, uri string) error {
	if e == nil {
		return errNilState
	}
	if err := e.guard(); err != nil {
		return err
	}
	if caller != e.admin || caller == ([20]byte{}) {
		return ErrUnauthorized
	}
	if !tier.Valid() {
		return ErrInvalidTier
	}
	e.tierURIs[tier] = strings.TrimSpace(uri)
	return nil
}

// SetTierURIs batch-updates tier metadata references. Administrator only.
func (e *Engine) SetTierURIs(caller [20]byte, uris map[Tier]string) error {
	if e == nil {
		return errNilState
	}
	if err := e.guard(); err != nil {
		return err
	}
	if caller != e.admin || caller == ([20]byte{}) {
		return ErrUnauthorized
	}
	for tier, uri := range uris {
		if !tier.Valid() {
			return ErrInvalidTier
		}
		e.tierURIs[tier] = strings.TrimSpace(uri)
	}
	return nil
}

// TierURI reports the metadata reference configured for a tier.
func (e *Engine) TierURI(tier Tier) string {
	if e == nil {
		return ""
	}
	return e.tierURIs[tier]
}

// DeactivateBadge blocks future transfers of the badge. Score is unaffected.
func (e *Engine) DeactivateBadge(caller [20]byte, id uint64) error {
	return e.setBadgeActive(caller, id, false)
}

// ReactivateBadge re-enables transfers of a deactivated badge.
func (e *Engine) ReactivateBadge(caller [20]byte, id uint64) error {
	return e.setBadgeActive(caller, id, true)
}

func (e *Engine) setBadgeActive(caller [20]byte, id uint64, active bool) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.guard(); err != nil {
		return err
	}
	if caller != e.admin || caller == ([20]byte{}) {
		return ErrUnauthorized
	}
	badge, ok := e.state.BadgeGet(id)
	if !ok {
		return ErrBadgeNotFound
	}
	if badge.Active == active {
		return nil
	}
	badge.Active = active
	if err := e.state.BadgePut(badge); err != nil {
		return err
	}
	e.emit(NewBadgeActivationEvent(badge))
	return nil
}

// TransferBadge moves an active badge to a new owner. Deactivated badges
// cannot be transferred.
func (e *Engine) TransferBadge(caller [20]byte, id uint64, to [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.guard(); err != nil {
		return err
	}
	badge, ok := e.state.BadgeGet(id)
	if !ok {
		return ErrBadgeNotFound
	}
	if caller != badge.Owner {
		return ErrUnauthorized
	}
	if !badge.Active {
		return ErrBadgeInactive
	}
	if to == ([20]byte{}) {
		return ErrUnauthorized
	}
	badge.Owner = to
	if err := e.state.BadgePut(badge); err != nil {
		return err
	}
	if err := e.state.BadgeOwnerAppend(to, id); err != nil {
		return err
	}
	e.emit(NewBadgeTransferredEvent(badge, caller))
	return nil
}

// Reputation returns the stored record for the subject, or a zero record when
// none exists.
func (e *Engine) Reputation(subject [20]byte) (*UserReputation, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.loadOrInit(subject), nil
}

// GetBadge returns the badge record for the given identifier.
func (e *Engine) GetBadge(id uint64) (*Badge, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	badge, ok := e.state.BadgeGet(id)
	if !ok {
		return nil, ErrBadgeNotFound
	}
	return badge.Clone(), nil
}

// BadgesOf lists badges currently owned by the subject. Ownership is checked
// against the badge record itself; the index is append-only.
func (e *Engine) BadgesOf(owner [20]byte) ([]*Badge, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	ids, err := e.state.BadgeOwnerList(owner)
	if err != nil {
		return nil, err
	}
	out := make([]*Badge, 0, len(ids))
	for _, id := range ids {
		badge, ok := e.state.BadgeGet(id)
		if !ok || badge.Owner != owner {
			continue
		}
		out = append(out, badge.Clone())
	}
	return out, nil
}
