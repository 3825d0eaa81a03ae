package retrieval

import (
	"fmt"
	"time"

	"github.com/openclawco/recall/pkg/memory"
)

// recommend produces the ordered, independent recommendation list: open
// commitment, unresolved objection, leading preference, negative
// sentiment streak, and contact gap. Every item is optional.
func recommend(entry *memory.Entry, facts []memory.KeyFact, now time.Time) []string {
	var recs []string

	sources := make(map[string]memory.Interaction, len(entry.Interactions))
	for _, in := range entry.Interactions {
		sources[in.ID] = in
	}

	if f := bestInCategory(facts, sources, memory.CategoryCommitment, now); f != nil {
		recs = append(recs, fmt.Sprintf("Follow up on open commitment: %s", f.Fact))
	}

	if f := bestInCategory(facts, sources, memory.CategoryObjection, now); f != nil {
		recs = append(recs, fmt.Sprintf("Address unresolved objection: %s", f.Fact))
	}

	if f := bestInCategory(facts, sources, memory.CategoryPreference, now); f != nil {
		recs = append(recs, fmt.Sprintf("Keep in mind: %s", f.Fact))
	}

	if negativeStreak(entry.Sentiment.History) {
		recs = append(recs, "Recent sentiment is trending negative; approach with care.")
	}

	if gap, ok := timeSinceLastInteraction(entry, now); ok && gap > contactGap {
		recs = append(recs, fmt.Sprintf("No contact in %d days; consider reaching out.", int(gap.Hours()/24)))
	}

	return recs
}

// bestInCategory returns the highest-scoring fact in a category, or
// nil. Facts are weighted by the relevance of their source interaction;
// a fact whose source is no longer stored scores on its own timestamp.
// Ties go to the newer fact.
func bestInCategory(facts []memory.KeyFact, sources map[string]memory.Interaction, cat memory.FactCategory, now time.Time) *memory.KeyFact {
	var (
		best      *memory.KeyFact
		bestScore float64
	)
	for i := range facts {
		f := &facts[i]
		if f.Category != cat {
			continue
		}
		score := factScore(*f, sources, now)
		if best == nil || score > bestScore ||
			(score == bestScore && f.Timestamp.After(best.Timestamp)) {
			best = f
			bestScore = score
		}
	}
	return best
}

func factScore(f memory.KeyFact, sources map[string]memory.Interaction, now time.Time) float64 {
	if in, ok := sources[f.Source]; ok {
		return RelevanceScore(in, nil, now)
	}
	return RelevanceScore(memory.Interaction{Timestamp: f.Timestamp}, nil, now)
}

// negativeStreak reports whether at least 2 of the last 3 sentiment
// history entries are negative. History is stored most recent first.
func negativeStreak(history []memory.SentimentPoint) bool {
	n := min(len(history), 3)
	neg := 0
	for _, p := range history[:n] {
		if p.Sentiment == memory.SentimentNegative {
			neg++
		}
	}
	return neg >= 2
}

func timeSinceLastInteraction(entry *memory.Entry, now time.Time) (time.Duration, bool) {
	if len(entry.Interactions) == 0 {
		return 0, false
	}
	last := entry.Interactions[0].Timestamp
	for _, in := range entry.Interactions[1:] {
		if in.Timestamp.After(last) {
			last = in.Timestamp
		}
	}
	return now.Sub(last), true
}
