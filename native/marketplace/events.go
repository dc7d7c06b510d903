package marketplace

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"stakehire/core/types"
)

const (
	EventTypeEmployerRegistered   = "marketplace.employer.registered"
	EventTypeJobPosted            = "marketplace.job.posted"
	EventTypeJobExpired           = "marketplace.job.expired"
	EventTypeApplicationSubmitted = "marketplace.application.submitted"
	EventTypeApplicationReviewed  = "marketplace.application.reviewed"
	EventTypeApplicationRejected  = "marketplace.application.rejected"
	EventTypeCandidateHired       = "marketplace.application.hired"
	EventTypeApplicationRefunded  = "marketplace.application.refunded"
	EventTypeEarningsWithdrawn    = "marketplace.earnings.withdrawn"
)

// NewEmployerRegisteredEvent returns the payload for a one-time employer
// registration.
func NewEmployerRegisteredEvent(employer [20]byte, profile *EmployerProfile) *types.Event {
	attrs := map[string]string{
		"employer": hex.EncodeToString(employer[:]),
	}
	if profile != nil {
		attrs["followers"] = strconv.FormatUint(profile.FollowerCount, 10)
		attrs["score"] = strconv.FormatUint(profile.ReputationScore, 10)
	}
	return &types.Event{Type: EventTypeEmployerRegistered, Attributes: attrs}
}

// NewJobPostedEvent returns the canonical payload for a new posting.
func NewJobPostedEvent(j *Job) *types.Event {
	return &types.Event{Type: EventTypeJobPosted, Attributes: jobAttributes(j)}
}

// NewJobExpiredEvent returns the payload emitted when an unfilled posting is
// finalized after its deadline.
func NewJobExpiredEvent(j *Job, employerShare, penalty *big.Int) *types.Event {
	attrs := jobAttributes(j)
	attrs["employerShare"] = amountString(employerShare)
	attrs["penalty"] = amountString(penalty)
	return &types.Event{Type: EventTypeJobExpired, Attributes: attrs}
}

// NewApplicationSubmittedEvent returns the payload for a new application.
func NewApplicationSubmittedEvent(a *Application) *types.Event {
	return &types.Event{Type: EventTypeApplicationSubmitted, Attributes: applicationAttributes(a)}
}

// NewApplicationReviewedEvent returns the payload emitted on review approval.
func NewApplicationReviewedEvent(a *Application, refund *big.Int) *types.Event {
	attrs := applicationAttributes(a)
	attrs["refund"] = amountString(refund)
	return &types.Event{Type: EventTypeApplicationReviewed, Attributes: attrs}
}

// NewApplicationRejectedEvent returns the payload emitted on review rejection.
func NewApplicationRejectedEvent(a *Application) *types.Event {
	return &types.Event{Type: EventTypeApplicationRejected, Attributes: applicationAttributes(a)}
}

// NewCandidateHiredEvent returns the payload emitted when a job is filled.
func NewCandidateHiredEvent(j *Job, a *Application, bonus *big.Int) *types.Event {
	attrs := applicationAttributes(a)
	attrs["employer"] = hex.EncodeToString(j.Employer[:])
	attrs["bonus"] = amountString(bonus)
	return &types.Event{Type: EventTypeCandidateHired, Attributes: attrs}
}

// NewApplicationRefundedEvent returns the payload emitted when an open
// application is force-refunded.
func NewApplicationRefundedEvent(a *Application, refund *big.Int) *types.Event {
	attrs := applicationAttributes(a)
	attrs["refund"] = amountString(refund)
	return &types.Event{Type: EventTypeApplicationRefunded, Attributes: attrs}
}

// NewEarningsWithdrawnEvent returns the payload emitted on an earnings
// withdrawal.
func NewEarningsWithdrawnEvent(recipient [20]byte, amount *big.Int, platform bool) *types.Event {
	attrs := map[string]string{
		"recipient": hex.EncodeToString(recipient[:]),
		"amount":    amountString(amount),
		"platform":  strconv.FormatBool(platform),
	}
	return &types.Event{Type: EventTypeEarningsWithdrawn, Attributes: attrs}
}

func jobAttributes(j *Job) map[string]string {
	attrs := make(map[string]string)
	if j == nil {
		return attrs
	}
	sanitized, err := SanitizeJob(j)
	if err != nil {
		return attrs
	}
	attrs["jobId"] = strconv.FormatUint(sanitized.ID, 10)
	attrs["employer"] = hex.EncodeToString(sanitized.Employer[:])
	attrs["title"] = sanitized.Title
	attrs["applicationFee"] = sanitized.ApplicationFee.String()
	attrs["employerStake"] = sanitized.EmployerStake.String()
	attrs["maxApplicants"] = strconv.FormatUint(uint64(sanitized.MaxApplicants), 10)
	attrs["expiresAt"] = strconv.FormatInt(sanitized.ExpiresAt, 10)
	attrs["active"] = strconv.FormatBool(sanitized.Active)
	attrs["filled"] = strconv.FormatBool(sanitized.Filled)
	return attrs
}

func applicationAttributes(a *Application) map[string]string {
	attrs := make(map[string]string)
	if a == nil {
		return attrs
	}
	attrs["applicationId"] = strconv.FormatUint(a.ID, 10)
	attrs["jobId"] = strconv.FormatUint(a.JobID, 10)
	attrs["applicant"] = hex.EncodeToString(a.Applicant[:])
	attrs["stake"] = amountString(a.StakeAmount)
	attrs["status"] = a.Status.String()
	return attrs
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
