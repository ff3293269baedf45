package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

// DecisionObserver receives one observation per non-empty arbitration.
type DecisionObserver interface {
	ObserveDecision(tier domain.Tier, suggestions int, duration time.Duration)
}

// Arbiter tries the model tier first and falls back to the rule tier. The two
// tiers are never merged into one list.
type Arbiter struct {
	model    *ModelSuggester
	rules    *RuleSuggester
	observer DecisionObserver
}

func NewArbiter(model *ModelSuggester, rules *RuleSuggester, observer DecisionObserver) *Arbiter {
	return &Arbiter{
		model:    model,
		rules:    rules,
		observer: observer,
	}
}

func (a *Arbiter) ModelEnabled() bool {
	return a.model.Enabled()
}

func (a *Arbiter) Suggest(ctx context.Context, content string, current *domain.Candidate, candidates []domain.Candidate) []domain.Suggestion {
	return a.Decide(ctx, content, current, candidates).Suggestions
}

func (a *Arbiter) Decide(ctx context.Context, content string, _ *domain.Candidate, candidates []domain.Candidate) domain.Decision {
	if strings.TrimSpace(content) == "" {
		return domain.Decision{Tier: domain.TierNone, Suggestions: []domain.Suggestion{}}
	}
	start := time.Now()

	if a.model.Enabled() {
		suggestions, category, err := a.model.suggest(ctx, content, candidates)
		if err == nil {
			return a.finish(domain.Decision{Tier: domain.TierModel, Category: category, Suggestions: suggestions}, start)
		}
		slog.Info("model_tier_declined", "candidates", len(candidates), "reason", err)
	}

	suggestions, classification := a.rules.suggest(content, candidates)
	return a.finish(domain.Decision{
		Tier:        domain.TierRule,
		Category:    classification.Category,
		Suggestions: suggestions,
	}, start)
}

func (a *Arbiter) finish(decision domain.Decision, start time.Time) domain.Decision {
	elapsed := time.Since(start)
	slog.Info("suggest_decision",
		"tier", decision.Tier,
		"category", decision.Category,
		"suggestions", len(decision.Suggestions),
		"duration_ms", float64(elapsed.Microseconds())/1000.0,
	)
	if a.observer != nil {
		a.observer.ObserveDecision(decision.Tier, len(decision.Suggestions), elapsed)
	}
	return decision
}
