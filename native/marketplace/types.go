package marketplace

import (
	"fmt"
	"math/big"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ApplicationStatus tracks an application along its monotonic lifecycle:
// Pending → {Reviewed | AutoRejected} → {Hired | Refunded}.
type ApplicationStatus uint8

const (
	ApplicationPending ApplicationStatus = iota
	ApplicationReviewed
	ApplicationRejected
	ApplicationHired
	ApplicationAutoRejected
	ApplicationRefunded
)

// Valid reports whether the status value is within the supported range.
func (s ApplicationStatus) Valid() bool {
	return s <= ApplicationRefunded
}

// Terminal reports whether the application can no longer transition.
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case ApplicationHired, ApplicationRejected, ApplicationAutoRejected, ApplicationRefunded:
		return true
	default:
		return false
	}
}

// String returns the canonical label used in event attributes.
func (s ApplicationStatus) String() string {
	switch s {
	case ApplicationPending:
		return "pending"
	case ApplicationReviewed:
		return "reviewed"
	case ApplicationRejected:
		return "rejected"
	case ApplicationHired:
		return "hired"
	case ApplicationAutoRejected:
		return "auto_rejected"
	case ApplicationRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// Job is a posting backed by an employer stake. Filled jobs are never active;
// the flags gate review, hire and expiry into mutually exclusive paths.
type Job struct {
	ID                uint64
	Employer          [20]byte
	Title             string
	Description       string
	Requirements      string
	Salary            string
	ApplicationFee    *big.Int
	EmployerStake     *big.Int
	MaxApplicants     uint32
	CurrentApplicants uint32
	CreatedAt         int64
	ExpiresAt         int64
	Active            bool
	Filled            bool
	HiredCandidate    [20]byte
}

// Clone returns a deep copy of the job record.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	clone := *j
	if j.ApplicationFee != nil {
		clone.ApplicationFee = new(big.Int).Set(j.ApplicationFee)
	} else {
		clone.ApplicationFee = big.NewInt(0)
	}
	if j.EmployerStake != nil {
		clone.EmployerStake = new(big.Int).Set(j.EmployerStake)
	} else {
		clone.EmployerStake = big.NewInt(0)
	}
	return &clone
}

// SanitizeJob validates invariants on a stored job record.
func SanitizeJob(j *Job) (*Job, error) {
	if j == nil {
		return nil, fmt.Errorf("nil job")
	}
	clone := j.Clone()
	if clone.Filled && clone.Active {
		return nil, fmt.Errorf("filled job cannot be active")
	}
	if clone.CurrentApplicants > clone.MaxApplicants {
		return nil, fmt.Errorf("applicant count exceeds capacity")
	}
	if clone.ApplicationFee.Sign() < 0 || clone.EmployerStake.Sign() < 0 {
		return nil, fmt.Errorf("job amounts must be non-negative")
	}
	return clone, nil
}

// JobSpec carries the employer-supplied fields of a posting.
type JobSpec struct {
	Title          string
	Description    string
	Requirements   string
	Salary         string
	ApplicationFee *big.Int
	MaxApplicants  uint32
}

// Validate rejects postings with missing descriptive fields.
func (s *JobSpec) Validate() error {
	if s == nil {
		return fmt.Errorf("nil job spec")
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("job title required")
	}
	if s.ApplicationFee == nil || s.ApplicationFee.Sign() < 0 {
		return fmt.Errorf("application fee must be non-negative")
	}
	return nil
}

// Application records one candidate's stake-backed application to a job. At
// most one application exists per (job, applicant) pair.
type Application struct {
	ID          uint64
	JobID       uint64
	Applicant   [20]byte
	CoverLetter string
	Credentials string
	StakeAmount *big.Int
	AppliedAt   int64
	Status      ApplicationStatus
}

// Clone returns a deep copy of the application record.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	clone := *a
	if a.StakeAmount != nil {
		clone.StakeAmount = new(big.Int).Set(a.StakeAmount)
	} else {
		clone.StakeAmount = big.NewInt(0)
	}
	return &clone
}

// EmployerProfile is created once on registration and mutated on every job
// outcome.
type EmployerProfile struct {
	FollowerCount   uint64
	ReputationScore uint64
	TotalJobsPosted uint64
	SuccessfulHires uint64
	FailedJobs      uint64
	Verified        bool
}

// Clone returns a copy of the employer profile.
func (p *EmployerProfile) Clone() *EmployerProfile {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// CandidateProfile is created implicitly on the candidate's first application.
type CandidateProfile struct {
	ReputationScore        uint64
	TotalApplications      uint64
	SuccessfulApplications uint64
	Endorsements           []string
	Verified               bool
}

// Clone returns a deep copy of the candidate profile.
func (p *CandidateProfile) Clone() *CandidateProfile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Endorsements = append([]string(nil), p.Endorsements...)
	return &clone
}

const (
	vaultSeed  = "stakehire/marketplace/vault"
	moduleSeed = "stakehire/marketplace/module"
)

// VaultAddress derives the deterministic account holding all marketplace
// stakes, fees and earnings.
func VaultAddress() [20]byte {
	return deriveAddress(vaultSeed)
}

// ModuleAddress derives the identity the marketplace presents when driving
// collaborating engines such as the reputation engine.
func ModuleAddress() [20]byte {
	return deriveAddress(moduleSeed)
}

func deriveAddress(seed string) [20]byte {
	hash := ethcrypto.Keccak256([]byte(seed))
	var addr [20]byte
	copy(addr[:], hash[len(hash)-20:])
	return addr
}
