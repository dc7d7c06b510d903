package marketplace

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"stakehire/config"
	"stakehire/core/events"
	"stakehire/core/types"
	nativecommon "stakehire/native/common"
	"stakehire/native/reputation"
)

// Capacity bounds on a single posting.
const (
	minApplicants = 1
	maxApplicants = 100
)

// Reputation penalty applied to an employer whose job expires unfilled.
const expiredJobPenalty = 5

var (
	errNilState  = errors.New("marketplace engine: state not configured")
	errNilConfig = errors.New("marketplace engine: economics not configured")

	// ErrUnauthorized rejects callers without the role a transition demands.
	ErrUnauthorized = errors.New("marketplace: caller not authorized")
	// ErrReentrantCall rejects nested entry into a fund-moving operation.
	ErrReentrantCall = errors.New("marketplace: reentrant call rejected")
	// ErrAlreadyRegistered rejects repeat employer registration.
	ErrAlreadyRegistered = errors.New("marketplace: employer already registered")
	// ErrNotRegistered rejects postings from unverified employers.
	ErrNotRegistered = errors.New("marketplace: employer not registered")
	// ErrFeeTooLow rejects postings below the minimum application fee.
	ErrFeeTooLow = errors.New("marketplace: application fee below minimum")
	// ErrInvalidCapacity rejects postings outside the applicant bounds.
	ErrInvalidCapacity = errors.New("marketplace: max applicants out of range")
	// ErrInsufficientStake rejects postings funded below the required stake.
	ErrInsufficientStake = errors.New("marketplace: attached stake below requirement")
	// ErrJobNotFound marks lookups of unknown job identifiers.
	ErrJobNotFound = errors.New("marketplace: job not found")
	// ErrJobInactive marks transitions against finalized or expired postings.
	ErrJobInactive = errors.New("marketplace: job not active")
	// ErrJobFilled marks transitions against already-filled postings.
	ErrJobFilled = errors.New("marketplace: job already filled")
	// ErrJobExpired rejects applications after the posting deadline.
	ErrJobExpired = errors.New("marketplace: job expired")
	// ErrJobNotExpired rejects expiry processing before the deadline.
	ErrJobNotExpired = errors.New("marketplace: job not yet expired")
	// ErrJobFull rejects applications beyond the configured capacity.
	ErrJobFull = errors.New("marketplace: applicant capacity reached")
	// ErrAlreadyApplied rejects duplicate applications per (job, applicant).
	ErrAlreadyApplied = errors.New("marketplace: already applied to this job")
	// ErrInsufficientFee rejects applications funded below the posting fee.
	ErrInsufficientFee = errors.New("marketplace: attached stake below application fee")
	// ErrCooldownActive rejects applications inside the cooldown window.
	ErrCooldownActive = errors.New("marketplace: application cooldown active")
	// ErrApplicationNotFound marks lookups of unknown application ids.
	ErrApplicationNotFound = errors.New("marketplace: application not found")
	// ErrNotPending rejects reviews of applications past the pending phase.
	ErrNotPending = errors.New("marketplace: application not pending")
	// ErrNotReviewed rejects hires of applications that were never approved.
	ErrNotReviewed = errors.New("marketplace: application not reviewed")
	// ErrInsufficientBonus rejects hires whose attached value cannot cover the
	// signing bonus.
	ErrInsufficientBonus = errors.New("marketplace: attached value below signing bonus")
	// ErrNoEarnings rejects withdrawals with nothing accrued.
	ErrNoEarnings = errors.New("marketplace: no earnings to withdraw")
	// ErrInsufficientFunds marks a failed value transfer; the enclosing
	// operation must not partially apply.
	ErrInsufficientFunds = errors.New("marketplace: insufficient balance for transfer")
	// ErrSelfEndorsement rejects candidates endorsing themselves.
	ErrSelfEndorsement = errors.New("marketplace: self-endorsement rejected")
	// ErrInvalidWeight rejects zero-weight endorsements.
	ErrInvalidWeight = errors.New("marketplace: endorsement weight must be positive")
	// ErrCandidateNotFound rejects endorsements of unknown candidates.
	ErrCandidateNotFound = errors.New("marketplace: candidate not found")
)

type engineState interface {
	JobPut(*Job) error
	JobGet(id uint64) (*Job, bool)
	JobNextID() (uint64, error)
	ApplicationPut(*Application) error
	ApplicationGet(id uint64) (*Application, bool)
	ApplicationNextID() (uint64, error)
	JobApplicationsAppend(jobID, appID uint64) error
	JobApplications(jobID uint64) ([]uint64, error)
	HasApplied(jobID uint64, applicant [20]byte) (bool, error)
	SetApplied(jobID uint64, applicant [20]byte) error
	EmployerPut(addr [20]byte, profile *EmployerProfile) error
	EmployerGet(addr [20]byte) (*EmployerProfile, bool)
	CandidatePut(addr [20]byte, profile *CandidateProfile) error
	CandidateGet(addr [20]byte) (*CandidateProfile, bool)
	LastApplicationAt(addr [20]byte) (int64, error)
	SetLastApplicationAt(addr [20]byte, ts int64) error
	EarningsGet(addr [20]byte) (*big.Int, error)
	EarningsSet(addr [20]byte, amount *big.Int) error
	PlatformEarnings() (*big.Int, error)
	SetPlatformEarnings(amount *big.Int) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// reputationEngine is the slice of the reputation contract the marketplace
// drives. Calls are issued with the marketplace module identity after the
// marketplace's own mutations and transfers have succeeded.
type reputationEngine interface {
	UpdateScore(caller, subject [20]byte, newScore uint64) error
	RecordOutcome(caller, subject [20]byte, kind reputation.OutcomeKind, success bool) error
	Penalize(caller, subject [20]byte, delta uint64) error
	AddEndorsement(endorser, subject [20]byte, weight uint64) error
}

type marketplaceEvent struct {
	evt *types.Event
}

func (e marketplaceEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e marketplaceEvent) Event() *types.Event { return e.evt }

// Engine drives the job and application state machine: posting, staking,
// applying, reviewing, hiring, expiring and refunding. Every fund-moving
// entry point holds the reentrancy lock and commits its own state mutations
// before any vault payout so a re-entered call fails its guard conditions
// instead of double-paying.
type Engine struct {
	state      engineState
	emitter    events.Emitter
	cfg        *config.Economics
	pauses     *nativecommon.Pauses
	reputation reputationEngine
	vault      [20]byte
	owner      [20]byte
	locked     bool
	nowFn      func() int64
}

// NewEngine creates a marketplace engine bound to the supplied economic
// parameters. Passing nil selects the production defaults.
func NewEngine(cfg *config.Economics) *Engine {
	if cfg == nil {
		cfg = config.DefaultEconomics()
	}
	return &Engine{
		emitter: events.NoopEmitter{},
		cfg:     cfg.Clone(),
		pauses:  nativecommon.NewPauses(),
		vault:   VaultAddress(),
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetOwner configures the administrator address.
func (e *Engine) SetOwner(addr [20]byte) { e.owner = addr }

// SetReputation wires the reputation engine driven on job outcomes.
func (e *Engine) SetReputation(rep reputationEngine) { e.reputation = rep }

// SetPauses replaces the pause registry. The registry doubles as the pause
// view consulted by guards and the toggle surface driven by Pause/Unpause.
func (e *Engine) SetPauses(p *nativecommon.Pauses) {
	if p != nil {
		e.pauses = p
	}
}

// Pauses exposes the registry so collaborating engines can share it.
func (e *Engine) Pauses() *nativecommon.Pauses { return e.pauses }

// SetNowFunc overrides the time source used by the engine.
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
	e.emitter.Emit(marketplaceEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.cfg == nil {
		return errNilConfig
	}
	return nil
}

// enter acquires the reentrancy lock for a fund-moving operation. The
// returned func releases it; a nested call observes the lock and fails.
func (e *Engine) enter() (func(), error) {
	if e.locked {
		return nil, ErrReentrantCall
	}
	e.locked = true
	return func() { e.locked = false }, nil
}

func (e *Engine) guard() error {
	return nativecommon.Guard(e.pauses, nativecommon.ModuleMarketplace)
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func bpsShare(amount *big.Int, bps uint32) *big.Int {
	share := new(big.Int).Mul(cloneBigInt(amount), new(big.Int).SetUint64(uint64(bps)))
	return share.Div(share, big.NewInt(config.BpsDenominator))
}

func (e *Engine) transfer(from, to [20]byte, amount *big.Int) error {
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if amt.Sign() < 0 {
		return fmt.Errorf("marketplace: negative transfer amount")
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

func (e *Engine) creditEarnings(addr [20]byte, amount *big.Int) error {
	current, err := e.state.EarningsGet(addr)
	if err != nil {
		return err
	}
	current = cloneBigInt(current)
	return e.state.EarningsSet(addr, current.Add(current, cloneBigInt(amount)))
}

func (e *Engine) creditPlatform(amount *big.Int) error {
	current, err := e.state.PlatformEarnings()
	if err != nil {
		return err
	}
	current = cloneBigInt(current)
	return e.state.SetPlatformEarnings(current.Add(current, cloneBigInt(amount)))
}

// RequiredStake computes the employer stake for a posting:
// base + followers/1000 * multiplier, plus the senior bonus when applicable.
func (e *Engine) RequiredStake(followerCount uint64, isSeniorRole bool) *big.Int {
	required := cloneBigInt(e.cfg.BaseStake)
	brackets := new(big.Int).SetUint64(followerCount / 1_000)
	required.Add(required, brackets.Mul(brackets, e.cfg.FollowerMultiplier))
	if isSeniorRole {
		required.Add(required, e.cfg.SeniorBonus)
	}
	return required
}

// RegisterEmployer verifies the caller once, seeding the reputation score.
// The follower count comes from the external verification oracle and is
// trusted as supplied.
func (e *Engine) RegisterEmployer(caller [20]byte, followerCount uint64) (*EmployerProfile, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.guard(); err != nil {
		return nil, err
	}
	if existing, ok := e.state.EmployerGet(caller); ok && existing.Verified {
		return nil, ErrAlreadyRegistered
	}
	profile := &EmployerProfile{
		FollowerCount:   followerCount,
		ReputationScore: 100,
		Verified:        true,
	}
	if err := e.state.EmployerPut(caller, profile); err != nil {
		return nil, err
	}
	if e.reputation != nil {
		if err := e.reputation.UpdateScore(ModuleAddress(), caller, profile.ReputationScore); err != nil {
			return nil, err
		}
	}
	e.emit(NewEmployerRegisteredEvent(caller, profile))
	return profile.Clone(), nil
}

// PostJob creates an active posting backed by the attached stake. The whole
// attached value is retained as the employer stake; it must cover the
// computed requirement.
func (e *Engine) PostJob(caller [20]byte, spec *JobSpec, isSeniorRole bool, value *big.Int) (*Job, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.guard(); err != nil {
		return nil, err
	}
	release, err := e.enter()
	if err != nil {
		return nil, err
	}
	defer release()
	profile, ok := e.state.EmployerGet(caller)
	if !ok || !profile.Verified {
		return nil, ErrNotRegistered
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("marketplace: %w", err)
	}
	if spec.ApplicationFee.Cmp(e.cfg.MinApplicationFee) < 0 {
		return nil, ErrFeeTooLow
	}
	if spec.MaxApplicants < minApplicants || spec.MaxApplicants > maxApplicants {
		return nil, ErrInvalidCapacity
	}
	stake := cloneBigInt(value)
	required := e.RequiredStake(profile.FollowerCount, isSeniorRole)
	if stake.Cmp(required) < 0 {
		return nil, ErrInsufficientStake
	}
	// Collect the stake before recording the posting: a failed collection must
	// leave no job behind.
	if err := e.transfer(caller, e.vault, stake); err != nil {
		return nil, err
	}
	id, err := e.state.JobNextID()
	if err != nil {
		return nil, err
	}
	now := e.now()
	job := &Job{
		ID:             id,
		Employer:       caller,
		Title:          spec.Title,
		Description:    spec.Description,
		Requirements:   spec.Requirements,
		Salary:         spec.Salary,
		ApplicationFee: cloneBigInt(spec.ApplicationFee),
		EmployerStake:  stake,
		MaxApplicants:  spec.MaxApplicants,
		CreatedAt:      now,
		ExpiresAt:      now + e.cfg.JobDuration,
		Active:         true,
	}
	if err := e.state.JobPut(job); err != nil {
		return nil, err
	}
	profile = profile.Clone()
	profile.TotalJobsPosted++
	if err := e.state.EmployerPut(caller, profile); err != nil {
		return nil, err
	}
	e.emit(NewJobPostedEvent(job))
	return job.Clone(), nil
}

// ApplyForJob stakes the attached value against an open posting. One
// application per candidate per job; a candidate may apply at most once per
// cooldown window across all jobs.
func (e *Engine) ApplyForJob(caller [20]byte, jobID uint64, coverLetter, credentials string, value *big.Int) (*Application, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.guard(); err != nil {
		return nil, err
	}
	release, err := e.enter()
	if err != nil {
		return nil, err
	}
	defer release()
	job, ok := e.state.JobGet(jobID)
	if !ok {
		return nil, ErrJobNotFound
	}
	if job.Filled {
		return nil, ErrJobFilled
	}
	if !job.Active {
		return nil, ErrJobInactive
	}
	now := e.now()
	if now > job.ExpiresAt {
		return nil, ErrJobExpired
	}
	if job.CurrentApplicants >= job.MaxApplicants {
		return nil, ErrJobFull
	}
	applied, err := e.state.HasApplied(jobID, caller)
	if err != nil {
		return nil, err
	}
	if applied {
		return nil, ErrAlreadyApplied
	}
	stake := cloneBigInt(value)
	if stake.Cmp(job.ApplicationFee) < 0 {
		return nil, ErrInsufficientFee
	}
	last, err := e.state.LastApplicationAt(caller)
	if err != nil {
		return nil, err
	}
	if last > 0 && now-last < e.cfg.ApplicationCooldown {
		return nil, ErrCooldownActive
	}
	// Collect the stake before recording the application so a broke applicant
	// is neither indexed nor cooldown-stamped.
	if err := e.transfer(caller, e.vault, stake); err != nil {
		return nil, err
	}
	id, err := e.state.ApplicationNextID()
	if err != nil {
		return nil, err
	}
	app := &Application{
		ID:          id,
		JobID:       jobID,
		Applicant:   caller,
		CoverLetter: coverLetter,
		Credentials: credentials,
		StakeAmount: stake,
		AppliedAt:   now,
		Status:      ApplicationPending,
	}
	if err := e.state.ApplicationPut(app); err != nil {
		return nil, err
	}
	if err := e.state.JobApplicationsAppend(jobID, id); err != nil {
		return nil, err
	}
	if err := e.state.SetApplied(jobID, caller); err != nil {
		return nil, err
	}
	if err := e.state.SetLastApplicationAt(caller, now); err != nil {
		return nil, err
	}
	job.CurrentApplicants++
	if err := e.state.JobPut(job); err != nil {
		return nil, err
	}
	candidate, ok := e.state.CandidateGet(caller)
	if !ok {
		candidate = &CandidateProfile{Verified: true}
	} else {
		candidate = candidate.Clone()
	}
	candidate.TotalApplications++
	if err := e.state.CandidatePut(caller, candidate); err != nil {
		return nil, err
	}
	e.emit(NewApplicationSubmittedEvent(app))
	return app.Clone(), nil
}

// ReviewApplication moves a pending application to Reviewed or AutoRejected.
// Approval immediately refunds half the stake to the applicant and credits
// the remainder to the employer's retained earnings; rejection credits the
// full stake to the employer. Exactly one of the two outcomes fires.
func (e *Engine) ReviewApplication(caller [20]byte, applicationID uint64, approve bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.guard(); err != nil {
		return err
	}
	release, err := e.enter()
	if err != nil {
		return err
	}
	defer release()
	app, ok := e.state.ApplicationGet(applicationID)
	if !ok {
		return ErrApplicationNotFound
	}
	job, ok := e.state.JobGet(app.JobID)
	if !ok {
		return ErrJobNotFound
	}
	if caller != job.Employer {
		return ErrUnauthorized
	}
	if app.Status != ApplicationPending {
		return ErrNotPending
	}
	if job.Filled {
		return ErrJobFilled
	}
	if !job.Active {
		return ErrJobInactive
	}
	stake := cloneBigInt(app.StakeAmount)
	if !approve {
		app.Status = ApplicationAutoRejected
		if err := e.state.ApplicationPut(app); err != nil {
			return err
		}
		if err := e.creditEarnings(job.Employer, stake); err != nil {
			return err
		}
		e.emit(NewApplicationRejectedEvent(app))
		return nil
	}
	app.Status = ApplicationReviewed
	if err := e.state.ApplicationPut(app); err != nil {
		return err
	}
	refund := bpsShare(stake, e.cfg.ReviewedRefundBps)
	remainder := new(big.Int).Sub(stake, refund)
	if err := e.creditEarnings(job.Employer, remainder); err != nil {
		return err
	}
	if err := e.transfer(e.vault, app.Applicant, refund); err != nil {
		return err
	}
	e.emit(NewApplicationReviewedEvent(app, refund))
	return nil
}

// HireCandidate fills the job with a reviewed applicant. State is mutated
// first, then the candidate is paid stake plus signing bonus, the employer
// recovers the configured share of the stake, the platform keeps the rest,
// reputation outcomes land, and finally every other non-terminal application
// is refunded in full.
func (e *Engine) HireCandidate(caller [20]byte, applicationID uint64, value *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.guard(); err != nil {
		return err
	}
	release, err := e.enter()
	if err != nil {
		return err
	}
	defer release()
	app, ok := e.state.ApplicationGet(applicationID)
	if !ok {
		return ErrApplicationNotFound
	}
	job, ok := e.state.JobGet(app.JobID)
	if !ok {
		return ErrJobNotFound
	}
	if caller != job.Employer {
		return ErrUnauthorized
	}
	if job.Filled {
		return ErrJobFilled
	}
	if !job.Active {
		return ErrJobInactive
	}
	if app.Status != ApplicationReviewed {
		return ErrNotReviewed
	}
	bonus := cloneBigInt(value)
	if bonus.Sign() < 0 {
		return ErrInsufficientBonus
	}
	if err := e.transfer(caller, e.vault, bonus); err != nil {
		return err
	}

	app.Status = ApplicationHired
	if err := e.state.ApplicationPut(app); err != nil {
		return err
	}
	job.Filled = true
	job.Active = false
	job.HiredCandidate = app.Applicant
	if err := e.state.JobPut(job); err != nil {
		return err
	}

	payout := new(big.Int).Add(cloneBigInt(app.StakeAmount), bonus)
	if err := e.transfer(e.vault, app.Applicant, payout); err != nil {
		return err
	}
	employerRefund := bpsShare(job.EmployerStake, e.cfg.HiredRefundBps)
	platformShare := new(big.Int).Sub(cloneBigInt(job.EmployerStake), employerRefund)
	if err := e.transfer(e.vault, job.Employer, employerRefund); err != nil {
		return err
	}
	if err := e.creditPlatform(platformShare); err != nil {
		return err
	}

	if profile, ok := e.state.EmployerGet(job.Employer); ok {
		profile = profile.Clone()
		profile.SuccessfulHires++
		profile.ReputationScore += 10
		if err := e.state.EmployerPut(job.Employer, profile); err != nil {
			return err
		}
	}
	if candidate, ok := e.state.CandidateGet(app.Applicant); ok {
		candidate = candidate.Clone()
		candidate.SuccessfulApplications++
		candidate.ReputationScore += 10
		if err := e.state.CandidatePut(app.Applicant, candidate); err != nil {
			return err
		}
	}
	if e.reputation != nil {
		module := ModuleAddress()
		if err := e.reputation.RecordOutcome(module, job.Employer, reputation.OutcomeHire, true); err != nil {
			return err
		}
		if err := e.reputation.RecordOutcome(module, app.Applicant, reputation.OutcomeApplication, true); err != nil {
			return err
		}
	}

	if err := e.refundRemainingApplications(job, app.ID, false); err != nil {
		return err
	}
	e.emit(NewCandidateHiredEvent(job, app, bonus))
	return nil
}

// ProcessExpiredJob finalizes a posting whose deadline passed unfilled.
// Callable by anyone. The employer recovers the non-penalty share of the
// stake, the platform keeps the penalty, the employer takes a reputation hit
// and every still-pending application is refunded in full.
func (e *Engine) ProcessExpiredJob(caller [20]byte, jobID uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.guard(); err != nil {
		return err
	}
	release, err := e.enter()
	if err != nil {
		return err
	}
	defer release()
	job, ok := e.state.JobGet(jobID)
	if !ok {
		return ErrJobNotFound
	}
	if job.Filled {
		return ErrJobFilled
	}
	if !job.Active {
		return ErrJobInactive
	}
	if e.now() <= job.ExpiresAt {
		return ErrJobNotExpired
	}

	job.Active = false
	if err := e.state.JobPut(job); err != nil {
		return err
	}

	penalty := bpsShare(job.EmployerStake, e.cfg.ExpiredPenaltyBps)
	employerShare := new(big.Int).Sub(cloneBigInt(job.EmployerStake), penalty)
	if err := e.transfer(e.vault, job.Employer, employerShare); err != nil {
		return err
	}
	if err := e.creditPlatform(penalty); err != nil {
		return err
	}

	if profile, ok := e.state.EmployerGet(job.Employer); ok {
		profile = profile.Clone()
		profile.FailedJobs++
		if profile.ReputationScore > expiredJobPenalty {
			profile.ReputationScore -= expiredJobPenalty
		} else {
			profile.ReputationScore = 0
		}
		if err := e.state.EmployerPut(job.Employer, profile); err != nil {
			return err
		}
	}
	if e.reputation != nil {
		if err := e.reputation.Penalize(ModuleAddress(), job.Employer, expiredJobPenalty); err != nil {
			return err
		}
	}

	if err := e.refundRemainingApplications(job, 0, true); err != nil {
		return err
	}
	e.emit(NewJobExpiredEvent(job, employerShare, penalty))
	return nil
}

// refundRemainingApplications force-refunds the job's open applications. On
// hire both Pending and Reviewed applications are refunded; on expiry only
// Pending ones. The hired application is never reopened, and zero-stake
// entries are tolerated.
func (e *Engine) refundRemainingApplications(job *Job, skipAppID uint64, pendingOnly bool) error {
	ids, err := e.state.JobApplications(job.ID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if skipAppID != 0 && id == skipAppID {
			continue
		}
		other, ok := e.state.ApplicationGet(id)
		if !ok {
			continue
		}
		switch other.Status {
		case ApplicationPending:
		case ApplicationReviewed:
			if pendingOnly {
				continue
			}
		default:
			continue
		}
		stake := cloneBigInt(other.StakeAmount)
		other.Status = ApplicationRefunded
		if err := e.state.ApplicationPut(other); err != nil {
			return err
		}
		if err := e.transfer(e.vault, other.Applicant, stake); err != nil {
			return err
		}
		e.emit(NewApplicationRefundedEvent(other, stake))
	}
	return nil
}

// EndorseCandidate appends an endorsement to the candidate profile and
// forwards the weight to the reputation engine.
func (e *Engine) EndorseCandidate(caller, candidate [20]byte, text string, weight uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.guard(); err != nil {
		return err
	}
	if caller == candidate {
		return ErrSelfEndorsement
	}
	if weight == 0 {
		return ErrInvalidWeight
	}
	profile, ok := e.state.CandidateGet(candidate)
	if !ok {
		return ErrCandidateNotFound
	}
	profile = profile.Clone()
	profile.Endorsements = append(profile.Endorsements, text)
	profile.ReputationScore += weight * 2
	if err := e.state.CandidatePut(candidate, profile); err != nil {
		return err
	}
	if e.reputation != nil {
		if err := e.reputation.AddEndorsement(caller, candidate, weight); err != nil {
			return err
		}
	}
	return nil
}

// WithdrawEarnings pays out the caller's retained earnings. Earnings are
// zeroed before the payout so a re-entered withdrawal finds nothing left.
func (e *Engine) WithdrawEarnings(caller [20]byte) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.guard(); err != nil {
		return nil, err
	}
	release, err := e.enter()
	if err != nil {
		return nil, err
	}
	defer release()
	amount, err := e.state.EarningsGet(caller)
	if err != nil {
		return nil, err
	}
	amount = cloneBigInt(amount)
	if amount.Sign() == 0 {
		return nil, ErrNoEarnings
	}
	if err := e.state.EarningsSet(caller, big.NewInt(0)); err != nil {
		return nil, err
	}
	if err := e.transfer(e.vault, caller, amount); err != nil {
		return nil, err
	}
	e.emit(NewEarningsWithdrawnEvent(caller, amount, false))
	return amount, nil
}

// WithdrawPlatformEarnings pays accumulated platform earnings to the
// administrator. Administrator only.
func (e *Engine) WithdrawPlatformEarnings(caller [20]byte) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if caller != e.owner || caller == ([20]byte{}) {
		return nil, ErrUnauthorized
	}
	release, err := e.enter()
	if err != nil {
		return nil, err
	}
	defer release()
	amount, err := e.state.PlatformEarnings()
	if err != nil {
		return nil, err
	}
	amount = cloneBigInt(amount)
	if amount.Sign() == 0 {
		return nil, ErrNoEarnings
	}
	if err := e.state.SetPlatformEarnings(big.NewInt(0)); err != nil {
		return nil, err
	}
	if err := e.transfer(e.vault, caller, amount); err != nil {
		return nil, err
	}
	e.emit(NewEarningsWithdrawnEvent(caller, amount, true))
	return amount, nil
}

// Pause suspends a module. Administrator only.
func (e *Engine) Pause(caller [20]byte, module string) error {
	if caller != e.owner || caller == ([20]byte{}) {
		return ErrUnauthorized
	}
	e.pauses.Pause(module)
	return nil
}

// Unpause resumes a module. Administrator only.
func (e *Engine) Unpause(caller [20]byte, module string) error {
	if caller != e.owner || caller == ([20]byte{}) {
		return ErrUnauthorized
	}
	e.pauses.Unpause(module)
	return nil
}

// TransferOwnership hands the administrator role to a new address.
func (e *Engine) TransferOwnership(caller, newOwner [20]byte) error {
	if caller != e.owner || caller == ([20]byte{}) {
		return ErrUnauthorized
	}
	if newOwner == ([20]byte{}) {
		return ErrUnauthorized
	}
	e.owner = newOwner
	return nil
}

// GetJob returns the stored job record.
func (e *Engine) GetJob(id uint64) (*Job, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	job, ok := e.state.JobGet(id)
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

// GetApplication returns the stored application record.
func (e *Engine) GetApplication(id uint64) (*Application, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	app, ok := e.state.ApplicationGet(id)
	if !ok {
		return nil, ErrApplicationNotFound
	}
	return app.Clone(), nil
}

// EmployerProfileOf returns the employer profile when registered.
func (e *Engine) EmployerProfileOf(addr [20]byte) (*EmployerProfile, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	profile, ok := e.state.EmployerGet(addr)
	if !ok {
		return nil, ErrNotRegistered
	}
	return profile.Clone(), nil
}

// CandidateProfileOf returns the candidate profile when present.
func (e *Engine) CandidateProfileOf(addr [20]byte) (*CandidateProfile, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	profile, ok := e.state.CandidateGet(addr)
	if !ok {
		return nil, ErrCandidateNotFound
	}
	return profile.Clone(), nil
}

// EarningsOf reports the retained earnings accrued for an address.
func (e *Engine) EarningsOf(addr [20]byte) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	amount, err := e.state.EarningsGet(addr)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(amount), nil
}

// PlatformEarningsBalance reports the platform's accumulated earnings.
func (e *Engine) PlatformEarningsBalance() (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	amount, err := e.state.PlatformEarnings()
	if err != nil {
		return nil, err
	}
	return cloneBigInt(amount), nil
}
