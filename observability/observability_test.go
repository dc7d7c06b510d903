package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"stakehire/core/events"
	"stakehire/core/types"
	"stakehire/native/escrow"
	"stakehire/native/marketplace"
)

type stubEvent struct {
	evt *types.Event
}

func (s stubEvent) EventType() string {
	if s.evt == nil {
		return ""
	}
	return s.evt.Type
}

func (s stubEvent) Event() *types.Event { return s.evt }

type captureEmitter struct {
	seen []string
}

func (c *captureEmitter) Emit(evt events.Event) {
	c.seen = append(c.seen, evt.EventType())
}

func TestLogEmitterWritesEventAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	emitter := NewLogEmitter(logger)

	emitter.Emit(stubEvent{evt: &types.Event{
		Type:       marketplace.EventTypeJobPosted,
		Attributes: map[string]string{"jobId": "7", "title": "Gopher"},
	}})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["event"] != marketplace.EventTypeJobPosted {
		t.Fatalf("unexpected event field: %v", line["event"])
	}
	if line["jobId"] != "7" || line["title"] != "Gopher" {
		t.Fatalf("attributes not flattened into log line: %v", line)
	}
}

func TestLogEmitterIgnoresNil(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(slog.New(slog.NewJSONHandler(&buf, nil)))
	emitter.Emit(nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output for nil event, got %q", buf.String())
	}
}

func TestFanoutEmitterBroadcasts(t *testing.T) {
	first := &captureEmitter{}
	second := &captureEmitter{}
	fanout := NewFanoutEmitter(first, nil, second)

	fanout.Emit(stubEvent{evt: &types.Event{Type: escrow.EventTypeDepositCreated}})

	if len(first.seen) != 1 || first.seen[0] != escrow.EventTypeDepositCreated {
		t.Fatalf("first emitter missed event: %v", first.seen)
	}
	if len(second.seen) != 1 || second.seen[0] != escrow.EventTypeDepositCreated {
		t.Fatalf("second emitter missed event: %v", second.seen)
	}
}

func TestMetricsEmitterCountsTransitions(t *testing.T) {
	emitter := NewMetricsEmitter()
	metrics := Market()

	postedBefore := testutil.ToFloat64(metrics.jobsPosted)
	hiresBefore := testutil.ToFloat64(metrics.hires)
	approvedBefore := testutil.ToFloat64(metrics.reviews.WithLabelValues("approved"))
	createdBefore := testutil.ToFloat64(metrics.deposits.WithLabelValues("created"))

	emitter.Emit(stubEvent{evt: &types.Event{Type: marketplace.EventTypeJobPosted}})
	emitter.Emit(stubEvent{evt: &types.Event{Type: marketplace.EventTypeCandidateHired}})
	emitter.Emit(stubEvent{evt: &types.Event{Type: marketplace.EventTypeApplicationReviewed}})
	emitter.Emit(stubEvent{evt: &types.Event{Type: escrow.EventTypeDepositCreated}})
	emitter.Emit(stubEvent{evt: &types.Event{Type: "unrelated.event"}})
	emitter.Emit(nil)

	if got := testutil.ToFloat64(metrics.jobsPosted) - postedBefore; got != 1 {
		t.Fatalf("expected one posted job, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.hires) - hiresBefore; got != 1 {
		t.Fatalf("expected one hire, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.reviews.WithLabelValues("approved")) - approvedBefore; got != 1 {
		t.Fatalf("expected one approved review, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.deposits.WithLabelValues("created")) - createdBefore; got != 1 {
		t.Fatalf("expected one deposit transition, got %v", got)
	}
}
