package state

import (
	"math/big"
	"testing"

	"stakehire/native/marketplace"
	"stakehire/native/reputation"
)

func addr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func amount(raw string) *big.Int {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		panic("bad amount literal: " + raw)
	}
	return v
}

func TestAccountsAreCopied(t *testing.T) {
	store := NewInMemory()
	owner := addr(0x01)
	store.Credit(owner, big.NewInt(100))

	acc, err := store.GetAccount(owner[:])
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	acc.Balance.SetInt64(0)

	again, _ := store.GetAccount(owner[:])
	if again.Balance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("stored account aliased by reader, balance %s", again.Balance)
	}
}

// Full hire lifecycle over one shared store, with the marketplace driving the
// real reputation engine.
func TestSharedStoreDrivesFullLifecycle(t *testing.T) {
	store := NewInMemory()
	owner := addr(0xAA)
	employer := addr(0x02)
	candidate := addr(0x03)
	store.Credit(employer, amount("1000000000000000000"))
	store.Credit(candidate, amount("100000000000000000"))

	repEngine := reputation.NewEngine()
	repEngine.SetState(store)
	repEngine.SetAuthority(marketplace.ModuleAddress())

	market := marketplace.NewEngine(nil)
	market.SetState(store)
	market.SetOwner(owner)
	market.SetReputation(repEngine)
	now := int64(1_700_000_000)
	market.SetNowFunc(func() int64 { return now })

	if _, err := market.RegisterEmployer(employer, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	fee := amount("2000000000000000")
	job, err := market.PostJob(employer, &marketplace.JobSpec{
		Title:          "Ledger engineer",
		ApplicationFee: fee,
		MaxApplicants:  5,
	}, false, market.RequiredStake(0, false))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	app, err := market.ApplyForJob(candidate, job.ID, "cover", "creds", fee)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := market.ReviewApplication(employer, app.ID, true); err != nil {
		t.Fatalf("review: %v", err)
	}
	if err := market.HireCandidate(employer, app.ID, big.NewInt(0)); err != nil {
		t.Fatalf("hire: %v", err)
	}

	filled, err := market.GetJob(job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if !filled.Filled || filled.HiredCandidate != candidate {
		t.Fatalf("unexpected job record: %+v", filled)
	}
	rep, err := repEngine.Reputation(candidate)
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if rep.SuccessfulApplications != 1 || rep.Score != 10 {
		t.Fatalf("unexpected candidate reputation: %+v", rep)
	}
}
