package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
	"github.com/kirillkom/multitask-helper/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

func TestEventCodecRoundTrip(t *testing.T) {
	event := domain.SuggestionEvent{
		ID:             "evt-1",
		ContentPreview: "https://github.com/foo",
		Tier:           domain.TierRule,
		Category:       domain.CategoryWeb,
		Suggestions: []domain.Suggestion{{
			Reason:          "WEB -> chrome.exe",
			Candidate:       domain.Candidate{ID: "0x01", Title: "GitHub", ProcessName: "chrome.exe"},
			ConfidenceLabel: "High (0.95)",
			Priority:        "High",
		}},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	payload, err := encodeEvent(event)
	if err != nil {
		t.Fatalf("encodeEvent() error = %v", err)
	}
	got, err := decodeEvent(payload)
	if err != nil {
		t.Fatalf("decodeEvent() error = %v", err)
	}
	if got.ID != event.ID || got.Tier != event.Tier || !got.CreatedAt.Equal(event.CreatedAt) {
		t.Fatalf("unexpected event %+v", got)
	}
	if len(got.Suggestions) != 1 || got.Suggestions[0] != event.Suggestions[0] {
		t.Fatalf("unexpected suggestions %+v", got.Suggestions)
	}
}

func TestEventCodecRejectsMissingID(t *testing.T) {
	if _, err := encodeEvent(domain.SuggestionEvent{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input on encode, got %v", err)
	}
	if _, err := decodeEvent([]byte(`{"tier":"rule"}`)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input on decode, got %v", err)
	}
	if _, err := decodeEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestClassifyPublishError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want resilience.ErrorClassification
	}{
		{"nil", nil, resilience.ErrorClassification{}},
		{"canceled", context.Canceled, resilience.ErrorClassification{}},
		{"oversized payload", fmt.Errorf("nats publish: %w", nats.ErrMaxPayload), resilience.ErrorClassification{}},
		{"bad subject", nats.ErrBadSubject, resilience.ErrorClassification{}},
		{"closed connection", nats.ErrConnectionClosed, resilience.ErrorClassification{RecordFailure: true}},
		{"draining connection", nats.ErrConnectionDraining, resilience.ErrorClassification{RecordFailure: true}},
		{"timeout", nats.ErrTimeout, resilience.ErrorClassification{Retryable: true, RecordFailure: true}},
		{"no servers", nats.ErrNoServers, resilience.ErrorClassification{Retryable: true, RecordFailure: true}},
		{"unknown", errors.New("boom"), resilience.ErrorClassification{RecordFailure: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyPublishError(tc.err); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
	var _ resilience.ErrorClassifier = classifyPublishError
}

func TestPublishErrorKinds(t *testing.T) {
	if err := publishError(fmt.Errorf("nats publish: %w", nats.ErrMaxPayload)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected oversized payload as invalid input, got %v", err)
	}
	for _, cause := range []error{nats.ErrTimeout, nats.ErrConnectionClosed, nats.ErrConnectionDraining} {
		if err := publishError(cause); !errors.Is(err, domain.ErrTemporary) {
			t.Fatalf("expected %v wrapped as temporary, got %v", cause, err)
		}
	}
	plain := errors.New("boom")
	if err := publishError(plain); err != plain {
		t.Fatalf("expected unknown error unchanged, got %v", err)
	}
}

type recordingPublisher struct {
	events []domain.SuggestionEvent
	err    error
}

func (r *recordingPublisher) PublishSuggestions(ctx context.Context, event domain.SuggestionEvent) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected publish deadline")
	}
	r.events = append(r.events, event)
	return r.err
}

func TestWatchPublisherForwardsSuggestions(t *testing.T) {
	publisher := &recordingPublisher{}
	listener := NewWatchPublisher(publisher, 0)

	listener.ClipboardChanged("ignored")
	listener.StatusChanged("Ready")
	listener.SuggestionsReady(domain.SuggestionEvent{ID: "evt-1"})

	if len(publisher.events) != 1 || publisher.events[0].ID != "evt-1" {
		t.Fatalf("expected one forwarded event, got %+v", publisher.events)
	}

	publisher.err = errors.New("down")
	listener.SuggestionsReady(domain.SuggestionEvent{ID: "evt-2"})
	if len(publisher.events) != 2 {
		t.Fatalf("expected publish attempt despite error, got %d", len(publisher.events))
	}
}
