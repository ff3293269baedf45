package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
	"github.com/kirillkom/multitask-helper/internal/core/usecase"
)

type fakeService struct {
	targets   []domain.Candidate
	listErr   error
	switched  []domain.Candidate
	suggested []string
}

func (f *fakeService) SuggestFor(_ context.Context, content string) (domain.SuggestionEvent, error) {
	f.suggested = append(f.suggested, content)
	return domain.SuggestionEvent{
		ID:             "evt-1",
		ContentPreview: content,
		Tier:           domain.TierRule,
		Category:       domain.CategoryWeb,
		Suggestions: []domain.Suggestion{
			{Reason: "WEB -> chrome.exe", Candidate: f.targets[0], ConfidenceLabel: "High (0.95)"},
		},
	}, nil
}

func (f *fakeService) Targets(context.Context) ([]domain.Candidate, error) {
	return f.targets, f.listErr
}

func (f *fakeService) Switch(_ context.Context, candidate domain.Candidate) (bool, error) {
	for _, c := range f.targets {
		if c.ID == candidate.ID {
			f.switched = append(f.switched, candidate)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeService) DescribeSystem(context.Context) (usecase.SystemInfo, error) {
	return usecase.Summarize(f.targets, false), nil
}

func newFakeService() *fakeService {
	return &fakeService{targets: []domain.Candidate{
		{ID: "c", Title: "GitHub - Google Chrome", ProcessName: "chrome.exe"},
		{ID: "n", Title: "Untitled - Notepad", ProcessName: "notepad.exe"},
	}}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("expected tool content")
	}
	switch c := result.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return ""
}

func TestSuggestTargets(t *testing.T) {
	service := newFakeService()
	h := NewHandlers(service)

	result, err := h.SuggestTargets(context.Background(), callRequest(map[string]any{"content": "https://github.com/foo"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var event domain.SuggestionEvent
	if err := json.Unmarshal([]byte(resultText(t, result)), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.ID != "evt-1" || event.Suggestions[0].Candidate.ID != "c" {
		t.Fatalf("unexpected event %+v", event)
	}
	if len(service.suggested) != 1 || service.suggested[0] != "https://github.com/foo" {
		t.Fatalf("unexpected suggest calls %v", service.suggested)
	}
}

func TestSuggestTargetsRequiresContent(t *testing.T) {
	result, err := NewHandlers(newFakeService()).SuggestTargets(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for missing content")
	}
}

func TestListTargetsReportsFailure(t *testing.T) {
	service := newFakeService()
	service.listErr = errors.New("wmctrl missing")

	result, err := NewHandlers(service).ListTargets(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error")
	}
}

func TestActivateTarget(t *testing.T) {
	service := newFakeService()
	h := NewHandlers(service)

	result, err := h.ActivateTarget(context.Background(), callRequest(map[string]any{"id": "n"}))
	if err != nil || result.IsError {
		t.Fatalf("expected activation, got err=%v result=%+v", err, result)
	}
	if len(service.switched) != 1 || service.switched[0].ProcessName != "notepad.exe" {
		t.Fatalf("expected full candidate passed to switch, got %+v", service.switched)
	}

	result, err = h.ActivateTarget(context.Background(), callRequest(map[string]any{"id": "gone"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for unknown id")
	}
}

func TestSystemInfo(t *testing.T) {
	result, err := NewHandlers(newFakeService()).SystemInfo(context.Background(), callRequest(nil))
	if err != nil || result.IsError {
		t.Fatalf("unexpected failure err=%v", err)
	}
	var info usecase.SystemInfo
	if err := json.Unmarshal([]byte(resultText(t, result)), &info); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if info.Targets != 2 || info.Groups["browsers"] != 1 {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	if NewServer(newFakeService(), "test") == nil {
		t.Fatalf("expected server")
	}
}
