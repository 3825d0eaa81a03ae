// Package compactor reduces a contact's aged interactions into weekly
// summary records.
//
// Compaction is a pure function over in-memory data; it never touches
// the store. It is lossy and one-directional: summarized interactions
// cannot be expanded back to their originals, and anything past the
// retention ceiling is permanently discarded.
package compactor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openclawco/recall/pkg/memory"
)

const (
	// MaxInteractions is the hard cap on a contact's interaction set.
	MaxInteractions = 100

	// RecencyFloor is how many of the newest interactions are always
	// preserved uncompacted, regardless of age.
	RecencyFloor = 20

	// SummarizeAfter is the age past which interactions become
	// candidates for weekly summarization.
	SummarizeAfter = 30 * 24 * time.Hour

	// RetentionCeiling is the age past which interactions are dropped
	// outright.
	RetentionCeiling = 90 * 24 * time.Hour

	// compactTriggerOldCount is how many over-threshold interactions it
	// takes (beyond the hard cap being reached) to trigger compaction.
	compactTriggerOldCount = 20
)

// Result reports what a compaction pass did.
type Result struct {
	// Kept is the bounded replacement interaction set.
	Kept []memory.Interaction

	// OriginalCount and CompactedCount are the set sizes before and
	// after the pass.
	OriginalCount  int
	CompactedCount int

	// Summarized counts interactions folded into weekly summaries.
	Summarized int

	// Removed counts interactions discarded outright (past retention,
	// or truncated by the hard cap).
	Removed int
}

// ShouldCompact reports whether the interaction set warrants compaction:
// the total count must have reached the hard cap and more than 20
// interactions must be older than the summary threshold. A contact with
// many recent interactions is never compacted.
func ShouldCompact(interactions []memory.Interaction) bool {
	return shouldCompactAt(interactions, time.Now())
}

func shouldCompactAt(interactions []memory.Interaction, now time.Time) bool {
	if len(interactions) < MaxInteractions {
		return false
	}

	cutoff := now.Add(-SummarizeAfter)
	old := 0
	for _, in := range interactions {
		if in.Timestamp.Before(cutoff) {
			old++
		}
	}

	return old > compactTriggerOldCount
}

// Compact groups aged interactions into weekly summaries and returns a
// bounded replacement set. The newest 20 interactions and anything
// younger than 30 days pass through untouched; anything older than 90
// days is dropped; the rest is folded into one summary interaction per
// ISO week.
func Compact(interactions []memory.Interaction) Result {
	return compactAt(interactions, time.Now())
}

func compactAt(interactions []memory.Interaction, now time.Time) Result {
	res := Result{OriginalCount: len(interactions)}

	sorted := make([]memory.Interaction, len(interactions))
	copy(sorted, interactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	summaryCutoff := now.Add(-SummarizeAfter)
	retentionCutoff := now.Add(-RetentionCeiling)

	var recent, old []memory.Interaction
	for i, in := range sorted {
		if i < RecencyFloor || !in.Timestamp.Before(summaryCutoff) {
			recent = append(recent, in)
			continue
		}
		if in.Timestamp.Before(retentionCutoff) {
			res.Removed++
			continue
		}
		old = append(old, in)
	}

	// Group survivors by ISO week; groups of one pass through unchanged.
	groups := make(map[string][]memory.Interaction)
	var weekKeys []string
	for _, in := range old {
		key := weekKey(in.Timestamp)
		if _, seen := groups[key]; !seen {
			weekKeys = append(weekKeys, key)
		}
		groups[key] = append(groups[key], in)
	}

	kept := recent
	for _, key := range weekKeys {
		group := groups[key]
		if len(group) == 1 {
			kept = append(kept, group[0])
			continue
		}
		kept = append(kept, summarizeWeek(key, group))
		res.Summarized += len(group)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Timestamp.After(kept[j].Timestamp)
	})

	if len(kept) > MaxInteractions {
		res.Removed += len(kept) - MaxInteractions
		kept = kept[:MaxInteractions]
	}

	res.Kept = kept
	res.CompactedCount = len(kept)

	return res
}

// Truncate enforces the hard cap without summarizing: interactions are
// sorted newest-first and anything past the cap is dropped. This is the
// fallback for batches that exceed the cap while still too recent to
// compact - the cap holds unconditionally, but recent interactions are
// never folded into summaries.
func Truncate(interactions []memory.Interaction) Result {
	res := Result{OriginalCount: len(interactions)}

	sorted := make([]memory.Interaction, len(interactions))
	copy(sorted, interactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	if len(sorted) > MaxInteractions {
		res.Removed = len(sorted) - MaxInteractions
		sorted = sorted[:MaxInteractions]
	}

	res.Kept = sorted
	res.CompactedCount = len(sorted)

	return res
}

// weekKey renders an ISO year-week key, e.g. "2026-W07".
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// summarizeWeek synthesizes one summary interaction for a week's group.
// The timestamp is the earliest member's so ordering remains stable, and
// the id is deterministic per week.
func summarizeWeek(key string, group []memory.Interaction) memory.Interaction {
	earliest := group[0]
	for _, in := range group[1:] {
		if in.Timestamp.Before(earliest.Timestamp) {
			earliest = in
		}
	}

	var (
		channels  []string
		topics    []string
		seenCh    = make(map[memory.Channel]bool)
		seenTopic = make(map[string]bool)
		pos, neg  int
	)
	for _, in := range group {
		if !seenCh[in.Channel] {
			seenCh[in.Channel] = true
			channels = append(channels, string(in.Channel))
		}
		for _, t := range in.Topics {
			if !seenTopic[t] {
				seenTopic[t] = true
				topics = append(topics, t)
			}
		}
		switch in.Sentiment {
		case memory.SentimentPositive:
			pos++
		case memory.SentimentNegative:
			neg++
		}
	}

	sentiment := memory.SentimentNeutral
	switch {
	case pos > neg:
		sentiment = memory.SentimentPositive
	case neg > pos:
		sentiment = memory.SentimentNegative
	}

	summary := fmt.Sprintf("Week of %s: %d interactions across %s.",
		earliest.Timestamp.Format("Jan 2, 2006"), len(group), strings.Join(channels, ", "))
	if len(topics) > 0 {
		top := topics
		if len(top) > 3 {
			top = top[:3]
		}
		summary += " Topics: " + strings.Join(top, ", ")
	}

	return memory.Interaction{
		ID:        "summary_" + key,
		Timestamp: earliest.Timestamp,
		Channel:   memory.ChannelOther,
		Direction: earliest.Direction,
		Summary:   summary,
		Sentiment: sentiment,
		Topics:    topics,
	}
}
