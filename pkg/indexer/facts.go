package indexer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openclawco/recall/pkg/memory"
)

const (
	// Accepted clause lengths are [minClauseLen, maxClauseLen).
	minClauseLen = 6
	maxClauseLen = 200

	commitmentConfidence = 0.7
	preferenceConfidence = 0.6
	objectionConfidence  = 0.5
)

var (
	commitmentRe = regexp.MustCompile(`(?i)\b(?:i'?ll|i will|let me|i can|we'?ll)\s+([^,.!?;\n]+)`)
	preferenceRe = regexp.MustCompile(`(?i)\bi (?:prefer|like|want|need)\s+([^,.!?;\n]+)`)
)

// objectionWords trigger at most one objection fact per interaction.
var objectionWords = []string{"but", "however", "concern", "worried", "expensive", "too much"}

// ExtractKeyFacts derives commitment, preference, and objection facts
// from interaction bodies. Confidence is fixed per pattern family and
// clauses outside [6, 200) characters are discarded as noise.
//
// Fact ids are deterministic per contact and sync since a full re-sync
// clears and regenerates the fact set.
func ExtractKeyFacts(interactions []memory.Interaction, contactID string) []memory.KeyFact {
	var facts []memory.KeyFact

	factID := func() string {
		return fmt.Sprintf("%s_fact_%d", contactID, len(facts))
	}

	for _, in := range interactions {
		body := in.FullContent
		if body == "" {
			body = in.Summary
		}
		if body == "" {
			continue
		}

		for _, m := range commitmentRe.FindAllStringSubmatch(body, -1) {
			if clause, ok := acceptClause(m[1]); ok {
				facts = append(facts, newFact(factID(), "Commitment: "+clause, in, memory.CategoryCommitment, commitmentConfidence))
			}
		}

		for _, m := range preferenceRe.FindAllStringSubmatch(body, -1) {
			if clause, ok := acceptClause(m[1]); ok {
				facts = append(facts, newFact(factID(), "Preference: "+clause, in, memory.CategoryPreference, preferenceConfidence))
			}
		}

		// Objections: first keyword hit only, to avoid duplicate facts
		// from a single complaint.
		lower := strings.ToLower(body)
		for _, word := range objectionWords {
			idx := strings.Index(lower, word)
			if idx < 0 {
				continue
			}
			if clause, ok := acceptClause(sentenceAt(body, idx)); ok {
				facts = append(facts, newFact(factID(), "Objection: "+clause, in, memory.CategoryObjection, objectionConfidence))
			}
			break
		}
	}

	return facts
}

func newFact(id, text string, in memory.Interaction, cat memory.FactCategory, confidence float64) memory.KeyFact {
	return memory.KeyFact{
		ID:         id,
		Fact:       text,
		Source:     in.ID,
		Confidence: confidence,
		Timestamp:  in.Timestamp,
		Category:   cat,
	}
}

// acceptClause trims a candidate clause and applies the length gate.
func acceptClause(clause string) (string, bool) {
	clause = strings.TrimSpace(clause)
	if len(clause) < minClauseLen || len(clause) >= maxClauseLen {
		return "", false
	}
	return clause, true
}

// sentenceAt returns the sentence of body containing byte offset idx,
// where sentences are delimited by '.', '!', '?' or newlines.
func sentenceAt(body string, idx int) string {
	isBoundary := func(b byte) bool {
		return b == '.' || b == '!' || b == '?' || b == '\n'
	}

	start := 0
	for i := idx - 1; i >= 0; i-- {
		if isBoundary(body[i]) {
			start = i + 1
			break
		}
	}

	end := len(body)
	for i := idx; i < len(body); i++ {
		if isBoundary(body[i]) {
			end = i
			break
		}
	}

	return strings.TrimSpace(body[start:end])
}
