package memory

import (
	"sort"
	"time"
)

const (
	// sentimentVoteWindow is how many of the most recent interactions
	// participate in the overall majority vote.
	sentimentVoteWindow = 10

	// sentimentHistoryCap bounds the retained history.
	sentimentHistoryCap = 20
)

// SentimentAnalysis is the per-contact sentiment aggregate: an overall
// majority vote plus a bounded history, most recent first.
type SentimentAnalysis struct {
	Overall Sentiment        `json:"overall"`
	History []SentimentPoint `json:"history,omitempty"`
}

// SentimentPoint is one history entry. Score is +1 for positive, -1 for
// negative, 0 for neutral.
type SentimentPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Sentiment Sentiment `json:"sentiment"`
	Score     float64   `json:"score"`
}

// AggregateSentiment computes the sentiment aggregate over a contact's
// interactions. Overall is the majority vote across the 10 most recent
// interactions that carry a sentiment; ties (including no data) default
// to neutral. History keeps the 20 most recent points, newest first.
func AggregateSentiment(interactions []Interaction) SentimentAnalysis {
	sorted := make([]Interaction, len(interactions))
	copy(sorted, interactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	var history []SentimentPoint
	for _, in := range sorted {
		if in.Sentiment == "" {
			continue
		}
		if len(history) == sentimentHistoryCap {
			break
		}
		history = append(history, SentimentPoint{
			Timestamp: in.Timestamp,
			Sentiment: in.Sentiment,
			Score:     sentimentScore(in.Sentiment),
		})
	}

	var pos, neg int
	for i, p := range history {
		if i == sentimentVoteWindow {
			break
		}
		switch p.Sentiment {
		case SentimentPositive:
			pos++
		case SentimentNegative:
			neg++
		}
	}

	overall := SentimentNeutral
	switch {
	case pos > neg:
		overall = SentimentPositive
	case neg > pos:
		overall = SentimentNegative
	}

	return SentimentAnalysis{Overall: overall, History: history}
}

func sentimentScore(s Sentiment) float64 {
	switch s {
	case SentimentPositive:
		return 1
	case SentimentNegative:
		return -1
	default:
		return 0
	}
}
