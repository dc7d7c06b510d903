package state

import (
	"math/big"
	"sync"

	"stakehire/core/types"
	"stakehire/native/escrow"
	"stakehire/native/marketplace"
	"stakehire/native/reputation"
)

type appliedKey struct {
	jobID     uint64
	applicant [20]byte
}

// InMemory is a map-backed state store satisfying the backend contracts of the
// escrow, reputation and marketplace engines plus the shared account ledger.
// All access is serialized through a single mutex; the engines layer their own
// ordering on top.
type InMemory struct {
	mu sync.Mutex

	accounts map[[20]byte]*types.Account

	deposits      map[uint64]*escrow.Deposit
	depositOwners map[[20]byte][]uint64
	depositorBals map[[20]byte]*big.Int
	totals        *escrow.Totals
	nextDepositID uint64

	reputations map[[20]byte]*reputation.UserReputation
	badges      map[uint64]*reputation.Badge
	badgeOwners map[[20]byte][]uint64
	nextBadgeID uint64

	jobs        map[uint64]*marketplace.Job
	apps        map[uint64]*marketplace.Application
	jobApps     map[uint64][]uint64
	applied     map[appliedKey]bool
	employers   map[[20]byte]*marketplace.EmployerProfile
	candidates  map[[20]byte]*marketplace.CandidateProfile
	lastApplied map[[20]byte]int64
	earnings    map[[20]byte]*big.Int
	platform    *big.Int
	nextJobID   uint64
	nextAppID   uint64
}

// NewInMemory constructs an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		accounts:      make(map[[20]byte]*types.Account),
		deposits:      make(map[uint64]*escrow.Deposit),
		depositOwners: make(map[[20]byte][]uint64),
		depositorBals: make(map[[20]byte]*big.Int),
		totals:        &escrow.Totals{Deposited: big.NewInt(0), Released: big.NewInt(0), Refunded: big.NewInt(0)},
		reputations:   make(map[[20]byte]*reputation.UserReputation),
		badges:        make(map[uint64]*reputation.Badge),
		badgeOwners:   make(map[[20]byte][]uint64),
		jobs:          make(map[uint64]*marketplace.Job),
		apps:          make(map[uint64]*marketplace.Application),
		jobApps:       make(map[uint64][]uint64),
		applied:       make(map[appliedKey]bool),
		employers:     make(map[[20]byte]*marketplace.EmployerProfile),
		candidates:    make(map[[20]byte]*marketplace.CandidateProfile),
		lastApplied:   make(map[[20]byte]int64),
		earnings:      make(map[[20]byte]*big.Int),
		platform:      big.NewInt(0),
	}
}

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// GetAccount returns a copy of the account, or a zero-balance account when the
// address was never funded.
func (s *InMemory) GetAccount(addr []byte) (*types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var key [20]byte
	copy(key[:], addr)
	if acc, ok := s.accounts[key]; ok {
		return acc.Clone(), nil
	}
	return &types.Account{Balance: big.NewInt(0)}, nil
}

// PutAccount stores a copy of the account.
func (s *InMemory) PutAccount(addr []byte, account *types.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var key [20]byte
	copy(key[:], addr)
	s.accounts[key] = account.Clone()
	return nil
}

// Credit adds native funds to an address outside any engine flow. Intended for
// genesis-style seeding.
func (s *InMemory) Credit(addr [20]byte, amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[addr]
	if !ok {
		acc = &types.Account{Balance: big.NewInt(0)}
	}
	acc = types.EnsureAccount(acc)
	acc.Balance = new(big.Int).Add(acc.Balance, cloneAmount(amount))
	s.accounts[addr] = acc
}

func (s *InMemory) DepositPut(d *escrow.Deposit) error {
	sanitized, err := escrow.SanitizeDeposit(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deposits[sanitized.ID] = sanitized
	return nil
}

func (s *InMemory) DepositGet(id uint64) (*escrow.Deposit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dep, ok := s.deposits[id]
	if !ok {
		return nil, false
	}
	return dep.Clone(), true
}

func (s *InMemory) DepositNextID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDepositID++
	return s.nextDepositID, nil
}

func (s *InMemory) DepositOwnerAppend(owner [20]byte, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depositOwners[owner] = append(s.depositOwners[owner], id)
	return nil
}

func (s *InMemory) DepositOwnerList(owner [20]byte) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.depositOwners[owner]...), nil
}

func (s *InMemory) DepositorBalance(owner [20]byte) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAmount(s.depositorBals[owner]), nil
}

func (s *InMemory) SetDepositorBalance(owner [20]byte, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depositorBals[owner] = cloneAmount(amount)
	return nil
}

func (s *InMemory) Totals() (*escrow.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals.Clone(), nil
}

func (s *InMemory) SetTotals(t *escrow.Totals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals = t.Clone()
	return nil
}

func (s *InMemory) ReputationGet(addr [20]byte) (*reputation.UserReputation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.reputations[addr]
	if !ok {
		return nil, false
	}
	return rep.Clone(), true
}

func (s *InMemory) ReputationPut(addr [20]byte, rep *reputation.UserReputation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reputations[addr] = rep.Clone()
	return nil
}

func (s *InMemory) BadgePut(b *reputation.Badge) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badges[b.ID] = b.Clone()
	return nil
}

func (s *InMemory) BadgeGet(id uint64) (*reputation.Badge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	badge, ok := s.badges[id]
	if !ok {
		return nil, false
	}
	return badge.Clone(), true
}

func (s *InMemory) BadgeNextID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBadgeID++
	return s.nextBadgeID, nil
}

func (s *InMemory) BadgeOwnerAppend(owner [20]byte, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badgeOwners[owner] = append(s.badgeOwners[owner], id)
	return nil
}

func (s *InMemory) BadgeOwnerList(owner [20]byte) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.badgeOwners[owner]...), nil
}

func (s *InMemory) JobPut(j *marketplace.Job) error {
	sanitized, err := marketplace.SanitizeJob(j)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[sanitized.ID] = sanitized
	return nil
}

func (s *InMemory) JobGet(id uint64) (*marketplace.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

func (s *InMemory) JobNextID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextJobID++
	return s.nextJobID, nil
}

func (s *InMemory) ApplicationPut(a *marketplace.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[a.ID] = a.Clone()
	return nil
}

func (s *InMemory) ApplicationGet(id uint64) (*marketplace.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, false
	}
	return app.Clone(), true
}

func (s *InMemory) ApplicationNextID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAppID++
	return s.nextAppID, nil
}

func (s *InMemory) JobApplicationsAppend(jobID, appID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobApps[jobID] = append(s.jobApps[jobID], appID)
	return nil
}

func (s *InMemory) JobApplications(jobID uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.jobApps[jobID]...), nil
}

func (s *InMemory) HasApplied(jobID uint64, applicant [20]byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied[appliedKey{jobID, applicant}], nil
}

func (s *InMemory) SetApplied(jobID uint64, applicant [20]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied[appliedKey{jobID, applicant}] = true
	return nil
}

func (s *InMemory) EmployerPut(addr [20]byte, profile *marketplace.EmployerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employers[addr] = profile.Clone()
	return nil
}

func (s *InMemory) EmployerGet(addr [20]byte) (*marketplace.EmployerProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.employers[addr]
	if !ok {
		return nil, false
	}
	return profile.Clone(), true
}

func (s *InMemory) CandidatePut(addr [20]byte, profile *marketplace.CandidateProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[addr] = profile.Clone()
	return nil
}

func (s *InMemory) CandidateGet(addr [20]byte) (*marketplace.CandidateProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.candidates[addr]
	if !ok {
		return nil, false
	}
	return profile.Clone(), true
}

func (s *InMemory) LastApplicationAt(addr [20]byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastApplied[addr], nil
}

func (s *InMemory) SetLastApplicationAt(addr [20]byte, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastApplied[addr] = ts
	return nil
}

func (s *InMemory) EarningsGet(addr [20]byte) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAmount(s.earnings[addr]), nil
}

func (s *InMemory) EarningsSet(addr [20]byte, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.earnings[addr] = cloneAmount(amount)
	return nil
}

func (s *InMemory) PlatformEarnings() (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAmount(s.platform), nil
}

func (s *InMemory) SetPlatformEarnings(amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.platform = cloneAmount(amount)
	return nil
}
