package reputation

import (
	"bytes"
	"errors"
	"testing"

	"stakehire/core/events"
	nativecommon "stakehire/native/common"
)

type mockState struct {
	reputations map[[20]byte]*UserReputation
	badges      map[uint64]*Badge
	owners      map[[20]byte][]uint64
	nextID      uint64
}

func newMockState() *mockState {
	return &mockState{
		reputations: make(map[[20]byte]*UserReputation),
		badges:      make(map[uint64]*Badge),
		owners:      make(map[[20]byte][]uint64),
	}
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func (m *mockState) ReputationGet(addr [20]byte) (*UserReputation, bool) {
	rep, ok := m.reputations[addr]
	if !ok {
		return nil, false
	}
	return rep.Clone(), true
}

func (m *mockState) ReputationPut(addr [20]byte, rep *UserReputation) error {
	m.reputations[addr] = rep.Clone()
	return nil
}

func (m *mockState) BadgePut(b *Badge) error {
	if err := b.Validate(); err != nil {
		return err
	}
	m.badges[b.ID] = b.Clone()
	return nil
}

func (m *mockState) BadgeGet(id uint64) (*Badge, bool) {
	badge, ok := m.badges[id]
	if !ok {
		return nil, false
	}
	return badge.Clone(), true
}

func (m *mockState) BadgeNextID() (uint64, error) {
	m.nextID++
	return m.nextID, nil
}

func (m *mockState) BadgeOwnerAppend(owner [20]byte, id uint64) error {
	m.owners[owner] = append(m.owners[owner], id)
	return nil
}

func (m *mockState) BadgeOwnerList(owner [20]byte) ([]uint64, error) {
	return append([]uint64(nil), m.owners[owner]...), nil
}

type capturingEmitter struct {
	events []events.Event
}

func (c *capturingEmitter) Emit(evt events.Event) {
	c.events = append(c.events, evt)
}

var (
	adminAddr     = newTestAddress(0xAD)
	authorityAddr = newTestAddress(0xA0)
)

func newTestEngine(state *mockState) *Engine {
	engine := NewEngine()
	engine.SetState(state)
	engine.SetAdmin(adminAddr)
	engine.SetAuthority(authorityAddr)
	engine.SetNowFunc(func() int64 { return 1_700_000_000 })
	return engine
}

func TestTierForScore(t *testing.T) {
	thresholds := [4]uint64{100, 500, 1000, 5000}
	cases := []struct {
		score uint64
		want  Tier
	}{
		{0, TierBronze},
		{99, TierBronze},
		{100, TierBronze},
		{499, TierBronze},
		{500, TierSilver},
		{999, TierSilver},
		{1000, TierGold},
		{4999, TierGold},
		{5000, TierPlatinum},
		{1_000_000, TierPlatinum},
	}
	for _, tc := range cases {
		if got := TierForScore(tc.score, thresholds); got != tc.want {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestUpdateScoreAuthorization(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	subject := newTestAddress(0x01)

	if err := engine.UpdateScore(newTestAddress(0x99), subject, 50); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := engine.UpdateScore([20]byte{}, subject, 50); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected zero caller rejected, got %v", err)
	}
	if err := engine.UpdateScore(adminAddr, subject, 50); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if err := engine.UpdateScore(authorityAddr, subject, 60); err != nil {
		t.Fatalf("authority update: %v", err)
	}
}

func TestUpdateScoreMintsOnlyOnTierIncrease(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	subject := newTestAddress(0x02)

	if err := engine.UpdateScore(authorityAddr, subject, 50); err != nil {
		t.Fatalf("update: %v", err)
	}
	badges, _ := engine.BadgesOf(subject)
	if len(badges) != 1 || badges[0].Tier != TierBronze {
		t.Fatalf("expected one bronze badge on first touch, got %v", badges)
	}

	// Dropping the score never mints, nor does staying within the tier.
	if err := engine.UpdateScore(authorityAddr, subject, 10); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := engine.UpdateScore(authorityAddr, subject, 499); err != nil {
		t.Fatalf("update: %v", err)
	}
	badges, _ = engine.BadgesOf(subject)
	if len(badges) != 1 {
		t.Fatalf("expected no additional mints, got %d badges", len(badges))
	}

	if err := engine.UpdateScore(authorityAddr, subject, 1_200); err != nil {
		t.Fatalf("update: %v", err)
	}
	badges, _ = engine.BadgesOf(subject)
	if len(badges) != 2 || badges[1].Tier != TierGold {
		t.Fatalf("expected gold badge appended, got %v", badges)
	}
	rep, _ := engine.Reputation(subject)
	if rep.CurrentTier != TierGold || !rep.HasBadge {
		t.Fatalf("unexpected reputation record: %+v", rep)
	}
}

func TestAddEndorsement(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	endorser := newTestAddress(0x03)
	subject := newTestAddress(0x04)

	if err := engine.AddEndorsement(subject, subject, 10); !errors.Is(err, ErrSelfEndorsement) {
		t.Fatalf("expected self-endorsement rejected, got %v", err)
	}
	if err := engine.AddEndorsement(endorser, subject, 0); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("expected zero weight rejected, got %v", err)
	}
	if err := engine.AddEndorsement(endorser, subject, 30); err != nil {
		t.Fatalf("endorse: %v", err)
	}
	rep, _ := engine.Reputation(subject)
	if rep.Score != 60 {
		t.Fatalf("expected score 60 (weight doubled), got %d", rep.Score)
	}
	if rep.TotalEndorsements != 30 {
		t.Fatalf("expected endorsement total 30, got %d", rep.TotalEndorsements)
	}
}

func TestRecordOutcome(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	subject := newTestAddress(0x05)

	if err := engine.RecordOutcome(newTestAddress(0x99), subject, OutcomeHire, true); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := engine.RecordOutcome(authorityAddr, subject, OutcomeKind(9), true); !errors.Is(err, ErrInvalidOutcome) {
		t.Fatalf("expected invalid outcome rejected, got %v", err)
	}
	if err := engine.RecordOutcome(authorityAddr, subject, OutcomeHire, true); err != nil {
		t.Fatalf("record hire: %v", err)
	}
	if err := engine.RecordOutcome(authorityAddr, subject, OutcomeApplication, true); err != nil {
		t.Fatalf("record application: %v", err)
	}
	if err := engine.RecordOutcome(authorityAddr, subject, OutcomeHire, false); err != nil {
		t.Fatalf("record failed hire: %v", err)
	}
	rep, _ := engine.Reputation(subject)
	if rep.SuccessfulHires != 1 || rep.SuccessfulApplications != 1 {
		t.Fatalf("unexpected counters: %+v", rep)
	}
	if rep.Score != 20 {
		t.Fatalf("expected score 20 from two successes, got %d", rep.Score)
	}
}

func TestPenalizeFloorsAtZeroAndNeverMints(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	subject := newTestAddress(0x06)

	if err := engine.UpdateScore(authorityAddr, subject, 5); err != nil {
		t.Fatalf("update: %v", err)
	}
	mintedBefore := len(state.badges)
	if err := engine.Penalize(newTestAddress(0x99), subject, 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := engine.Penalize(authorityAddr, subject, 10); err != nil {
		t.Fatalf("penalize: %v", err)
	}
	rep, _ := engine.Reputation(subject)
	if rep.Score != 0 {
		t.Fatalf("expected score floored at zero, got %d", rep.Score)
	}
	if len(state.badges) != mintedBefore {
		t.Fatalf("penalty must not mint badges")
	}
}

func TestTierURIAdministration(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)

	if err := engine.SetTierURI(newTestAddress(0x99), TierGold, "ipfs://gold"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := engine.SetTierURI(adminAddr, Tier(42), "ipfs://bogus"); !errors.Is(err, ErrInvalidTier) {
		t.Fatalf("expected invalid tier rejected, got %v", err)
	}
	if err := engine.SetTierURIs(adminAddr, map[Tier]string{
		TierBronze: "ipfs://bronze",
		TierGold:   " ipfs://gold ",
	}); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if got := engine.TierURI(TierGold); got != "ipfs://gold" {
		t.Fatalf("expected trimmed URI, got %q", got)
	}

	subject := newTestAddress(0x07)
	if err := engine.UpdateScore(authorityAddr, subject, 10); err != nil {
		t.Fatalf("update: %v", err)
	}
	badges, _ := engine.BadgesOf(subject)
	if len(badges) != 1 || badges[0].URI != "ipfs://bronze" {
		t.Fatalf("expected minted badge to carry tier URI, got %v", badges)
	}
}

func TestPauseBlocksMutations(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	pauses := nativecommon.NewPauses()
	engine.SetPauses(pauses)
	subject := newTestAddress(0x0A)
	endorser := newTestAddress(0x0B)

	if err := engine.UpdateScore(authorityAddr, subject, 700); err != nil {
		t.Fatalf("seed score: %v", err)
	}
	badges, _ := engine.BadgesOf(subject)
	if len(badges) != 1 {
		t.Fatalf("expected seed badge, got %d", len(badges))
	}
	id := badges[0].ID

	pauses.Pause(nativecommon.ModuleReputation)

	mutations := map[string]error{
		"update":     engine.UpdateScore(authorityAddr, subject, 800),
		"endorse":    engine.AddEndorsement(endorser, subject, 10),
		"outcome":    engine.RecordOutcome(authorityAddr, subject, OutcomeHire, true),
		"penalize":   engine.Penalize(authorityAddr, subject, 5),
		"tierURI":    engine.SetTierURI(adminAddr, TierGold, "ipfs://gold"),
		"deactivate": engine.DeactivateBadge(adminAddr, id),
		"transfer":   engine.TransferBadge(subject, id, endorser),
	}
	for name, err := range mutations {
		if !errors.Is(err, nativecommon.ErrModulePaused) {
			t.Fatalf("%s: expected paused rejection, got %v", name, err)
		}
	}

	// Reads stay available while paused.
	rep, err := engine.Reputation(subject)
	if err != nil || rep.Score != 700 {
		t.Fatalf("expected untouched reputation while paused, got %+v (%v)", rep, err)
	}

	pauses.Unpause(nativecommon.ModuleReputation)
	if err := engine.UpdateScore(authorityAddr, subject, 800); err != nil {
		t.Fatalf("update after unpause: %v", err)
	}
}

func TestBadgeDeactivationAndTransfer(t *testing.T) {
	state := newMockState()
	engine := newTestEngine(state)
	emitter := &capturingEmitter{}
	engine.SetEmitter(emitter)
	owner := newTestAddress(0x08)
	recipient := newTestAddress(0x09)

	if err := engine.UpdateScore(authorityAddr, owner, 700); err != nil {
		t.Fatalf("update: %v", err)
	}
	badges, _ := engine.BadgesOf(owner)
	if len(badges) != 1 {
		t.Fatalf("expected one badge, got %d", len(badges))
	}
	id := badges[0].ID

	if err := engine.TransferBadge(recipient, id, recipient); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected owner-only transfer, got %v", err)
	}
	if err := engine.DeactivateBadge(newTestAddress(0x99), id); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected admin-only deactivation, got %v", err)
	}
	if err := engine.DeactivateBadge(adminAddr, id); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := engine.TransferBadge(owner, id, recipient); !errors.Is(err, ErrBadgeInactive) {
		t.Fatalf("expected inactive badge untransferable, got %v", err)
	}
	if err := engine.ReactivateBadge(adminAddr, id); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if err := engine.TransferBadge(owner, id, recipient); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	moved, _ := engine.BadgesOf(recipient)
	if len(moved) != 1 || moved[0].ID != id {
		t.Fatalf("expected badge under recipient, got %v", moved)
	}
	left, _ := engine.BadgesOf(owner)
	if len(left) != 0 {
		t.Fatalf("expected stale owner index filtered, got %v", left)
	}

	sawMint, sawTransfer := false, false
	for _, evt := range emitter.events {
		switch evt.EventType() {
		case EventTypeBadgeMinted:
			sawMint = true
		case EventTypeBadgeTransferred:
			sawTransfer = true
		}
	}
	if !sawMint || !sawTransfer {
		t.Fatalf("expected mint and transfer events, got %v", emitter.events)
	}
}
