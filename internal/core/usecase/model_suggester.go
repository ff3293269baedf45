package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
	"github.com/kirillkom/multitask-helper/internal/core/ports"
)

const (
	// MaxScoredCandidates bounds completion queries per suggestion pass.
	MaxScoredCandidates = 5
	minScoredCandidates = 2

	// Rule classifications at or above this confidence skip the backend.
	trustedRuleConfidence = 0.8

	classifyMaxTokens = 32
	scoreMaxTokens    = 10
	queryTemperature  = 0.1
)

// ModelSuggester ranks candidates by asking the completion backend to rate
// each one. A pass that cannot score enough candidates returns
// domain.ErrInsufficientEvidence.
type ModelSuggester struct {
	completer  ports.TextCompleter
	classifier *ContentClassifier
}

func NewModelSuggester(completer ports.TextCompleter, classifier *ContentClassifier) *ModelSuggester {
	return &ModelSuggester{
		completer:  completer,
		classifier: classifier,
	}
}

func (s *ModelSuggester) Enabled() bool {
	return s != nil && s.completer != nil
}

func (s *ModelSuggester) Suggest(ctx context.Context, text string, _ *domain.Candidate, candidates []domain.Candidate) ([]domain.Suggestion, error) {
	suggestions, _, err := s.suggest(ctx, text, candidates)
	return suggestions, err
}

func (s *ModelSuggester) suggest(ctx context.Context, text string, candidates []domain.Candidate) ([]domain.Suggestion, domain.Category, error) {
	if !s.Enabled() {
		return nil, "", domain.ErrBackendDisabled
	}
	if len(candidates) == 0 {
		return nil, "", domain.WrapError(domain.ErrInsufficientEvidence, "model suggest", errors.New("no candidates"))
	}

	category, err := s.classify(ctx, text)
	if err != nil {
		return nil, "", domain.WrapError(domain.ErrInsufficientEvidence, "model classify", err)
	}

	queried := candidates
	if len(queried) > MaxScoredCandidates {
		queried = queried[:MaxScoredCandidates]
	}

	scored := make([]domain.ScoredCandidate, 0, len(queried))
	seen := make(map[string]struct{}, len(queried))
	for _, candidate := range queried {
		if _, dup := seen[candidate.ID]; dup {
			continue
		}
		seen[candidate.ID] = struct{}{}
		score, err := s.scoreCandidate(ctx, category, candidate)
		if err != nil {
			slog.Warn("model_score_skipped",
				"process", candidate.ProcessName,
				"category", category,
				"error", err,
			)
			continue
		}
		scored = append(scored, domain.ScoredCandidate{Candidate: candidate, Score: score})
	}

	if len(scored) < minScoredCandidates {
		return nil, category, domain.WrapError(
			domain.ErrInsufficientEvidence,
			"model suggest",
			fmt.Errorf("scored %d of %d candidates", len(scored), len(queried)),
		)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	out := make([]domain.Suggestion, 0, MaxSuggestions)
	for i, sc := range scored {
		if i == MaxSuggestions {
			break
		}
		out = append(out, domain.Suggestion{
			Reason:          fmt.Sprintf("AI Rank #%d", i+1),
			Candidate:       sc.Candidate,
			ConfidenceLabel: fmt.Sprintf("Score: %.2f", sc.Score),
		})
	}
	return out, category, nil
}

// classify trusts a confident rule result, otherwise asks the backend once and
// falls back to the rule category when the reply names none.
func (s *ModelSuggester) classify(ctx context.Context, text string) (domain.Category, error) {
	rule := s.classifier.Classify(text)
	if rule.Confidence >= trustedRuleConfidence {
		slog.Debug("model_classify_rule_trusted", "category", rule.Category, "confidence", rule.Confidence)
		return rule.Category, nil
	}

	reply, err := s.completer.Query(ctx, buildCategoryPrompt(text), classifyMaxTokens, queryTemperature)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		slog.Warn("model_classify_query_failed", "fallback", rule.Category, "error", err)
		return rule.Category, nil
	}

	category, ok := categoryFromReply(reply)
	if !ok {
		slog.Info("model_classify_unrecognized", "fallback", rule.Category, "reply", strings.TrimSpace(reply))
		return rule.Category, nil
	}
	slog.Info("model_classify", "category", category, "rule_category", rule.Category)
	return category, nil
}

func (s *ModelSuggester) scoreCandidate(ctx context.Context, category domain.Category, candidate domain.Candidate) (float64, error) {
	reply, err := s.completer.Query(ctx, buildScorePrompt(candidate.ProcessName, category), scoreMaxTokens, queryTemperature)
	if err != nil {
		return 0, fmt.Errorf("query: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return 0, errors.New("empty reply")
	}

	score, method, ok := ParseScoreDetailed(reply)
	if !ok {
		return 0, fmt.Errorf("no score in reply %q", strings.TrimSpace(reply))
	}
	slog.Info("model_score",
		"process", candidate.ProcessName,
		"app_context", AppContext(candidate.ProcessName),
		"category", category,
		"method", method,
		"score", score,
	)
	return score, nil
}
