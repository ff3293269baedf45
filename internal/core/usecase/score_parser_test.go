package usecase

import "testing"

func TestParseScore(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		score  float64
		method ScoreMethod
		ok     bool
	}{
		{name: "empty", reply: "", ok: false},
		{name: "reasoning only", reply: "<think>hmm 5</think>", ok: false},
		{name: "emphatic", reply: "12345", score: 1.0, method: ScoreMethodEmphatic, ok: true},
		{name: "yes", reply: "yes, definitely", score: 0.8, method: ScoreMethodYesNo, ok: true},
		{name: "no", reply: "No", score: 0.2, method: ScoreMethodYesNo, ok: true},
		{name: "bare number", reply: "4", score: 0.8, method: ScoreMethodNumeric, ok: true},
		{name: "scale suffix", reply: "score: 4/5", score: 0.8, method: ScoreMethodNumeric, ok: true},
		{name: "out of five", reply: "3 out of 5", score: 0.6, method: ScoreMethodNumeric, ok: true},
		{name: "largest wins", reply: "between 2 and 5", score: 1.0, method: ScoreMethodNumeric, ok: true},
		{name: "reasoning stripped", reply: "<think>maybe 5</think> 3", score: 0.6, method: ScoreMethodNumeric, ok: true},
		{name: "rating word", reply: "I'd say it is great", score: 0.8, method: ScoreMethodRatingWord, ok: true},
		{name: "zero rating word", reply: "none", score: 0, method: ScoreMethodRatingWord, ok: true},
		{name: "no only as a whole word", reply: "not good", score: 0.6, method: ScoreMethodRatingWord, ok: true},
		{name: "out of range", reply: "7", ok: false},
		{name: "gibberish", reply: "banana", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, method, ok := ParseScoreDetailed(tc.reply)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v (score %.2f)", tc.ok, ok, score)
			}
			if !ok {
				return
			}
			if score != tc.score {
				t.Fatalf("expected score %.2f, got %.2f", tc.score, score)
			}
			if method != tc.method {
				t.Fatalf("expected method %s, got %s", tc.method, method)
			}
		})
	}
}

func TestParseScoreStaysInUnitRange(t *testing.T) {
	replies := []string{"5", "5.0", "0", "0.5", "12345", "perfect", "awful", "4.99"}
	for _, reply := range replies {
		score, ok := ParseScore(reply)
		if !ok {
			t.Fatalf("expected a score for %q", reply)
		}
		if score < 0 || score > 1 {
			t.Fatalf("expected score in [0,1] for %q, got %.3f", reply, score)
		}
	}
}
