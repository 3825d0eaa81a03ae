// Package retrieval assembles bounded, ranked context bundles from a
// contact's stored memory.
//
// Retrieval is read-only: it filters and ranks what ingestion and
// compaction produced, generates a natural-language summary and a set of
// actionable recommendations, and renders the bundle for a text consumer.
package retrieval

import (
	"fmt"
	"sort"
	"time"

	"github.com/openclawco/recall/pkg/memory"
)

const (
	defaultMaxAge          = 30 * 24 * time.Hour
	defaultMaxInteractions = 10
	defaultMinConfidence   = 0.5

	maxFacts = 10

	// contactGap is the silence threshold that triggers a follow-up
	// recommendation.
	contactGap = 14 * 24 * time.Hour

	// scoreHorizon is the age at which the recency component of the
	// relevance score bottoms out.
	scoreHorizon = 90 * 24 * time.Hour
)

// Options bounds what AssembleContext returns. The zero value gets the
// documented defaults.
type Options struct {
	// MaxAge filters out interactions older than this. Defaults to 30
	// days.
	MaxAge time.Duration

	// Channels is an optional allow-list; empty means all channels.
	Channels []memory.Channel

	// MaxInteractions caps the interaction list. Defaults to 10.
	MaxInteractions int

	// MinConfidence filters facts. Defaults to 0.5.
	MinConfidence float64
}

func (o Options) withDefaults() Options {
	if o.MaxAge == 0 {
		o.MaxAge = defaultMaxAge
	}
	if o.MaxInteractions == 0 {
		o.MaxInteractions = defaultMaxInteractions
	}
	if o.MinConfidence == 0 {
		o.MinConfidence = defaultMinConfidence
	}
	return o
}

// Context is the bundle served to a consumer: recent interactions, top
// facts, preferences, recommendations, and a one-line summary.
type Context struct {
	ContactID       string               `json:"contact_id"`
	Summary         string               `json:"summary"`
	Interactions    []memory.Interaction `json:"interactions,omitempty"`
	KeyFacts        []memory.KeyFact     `json:"key_facts,omitempty"`
	Preferences     map[string]string    `json:"preferences,omitempty"`
	Sentiment       memory.Sentiment     `json:"sentiment"`
	Recommendations []string             `json:"recommendations,omitempty"`
}

// AssembleContext builds a bounded context bundle from a stored entry.
func AssembleContext(entry *memory.Entry, opts Options) *Context {
	return assembleContextAt(entry, opts, time.Now())
}

func assembleContextAt(entry *memory.Entry, opts Options, now time.Time) *Context {
	opts = opts.withDefaults()

	cutoff := now.Add(-opts.MaxAge)

	var interactions []memory.Interaction
	for _, in := range entry.Interactions {
		if in.Timestamp.Before(cutoff) {
			continue
		}
		if !channelAllowed(in.Channel, opts.Channels) {
			continue
		}
		interactions = append(interactions, in)
	}
	sort.SliceStable(interactions, func(i, j int) bool {
		return interactions[i].Timestamp.After(interactions[j].Timestamp)
	})
	if len(interactions) > opts.MaxInteractions {
		interactions = interactions[:opts.MaxInteractions]
	}

	var facts []memory.KeyFact
	for _, f := range entry.KeyFacts {
		if f.Confidence >= opts.MinConfidence {
			facts = append(facts, f)
		}
	}
	sort.SliceStable(facts, func(i, j int) bool {
		return facts[i].Confidence > facts[j].Confidence
	})
	if len(facts) > maxFacts {
		facts = facts[:maxFacts]
	}

	return &Context{
		ContactID:       entry.ContactID,
		Summary:         summarizeEntry(entry, facts, now),
		Interactions:    interactions,
		KeyFacts:        facts,
		Preferences:     entry.Preferences,
		Sentiment:       entry.Sentiment.Overall,
		Recommendations: recommend(entry, facts, now),
	}
}

func channelAllowed(ch memory.Channel, allow []memory.Channel) bool {
	if len(allow) == 0 {
		return true
	}
	for _, a := range allow {
		if ch == a {
			return true
		}
	}
	return false
}

// RelevanceScore weights an interaction against a topic set of interest.
// It blends recency (half weight), topic overlap (0.3), and a sentiment
// bonus. Negative sentiment deliberately keeps a nontrivial weight:
// remembering dissatisfaction is operationally important.
//
// The score is a soft signal in [0, 1] used for recommendation
// weighting; it does not re-rank the primary interaction list.
func RelevanceScore(in memory.Interaction, topics []string, now time.Time) float64 {
	age := now.Sub(in.Timestamp)
	if age < 0 {
		age = 0
	}
	recency := 1 - min(float64(age)/float64(scoreHorizon), 1)

	overlap := 0.0
	if len(topics) > 0 {
		matched := 0
		for _, t := range topics {
			for _, it := range in.Topics {
				if t == it {
					matched++
					break
				}
			}
		}
		overlap = float64(matched) / float64(len(topics))
	}

	bonus := 0.0
	switch in.Sentiment {
	case memory.SentimentPositive:
		bonus = 0.2
	case memory.SentimentNegative:
		bonus = 0.1
	}

	return 0.5*recency + 0.3*overlap + bonus
}

// summarizeEntry renders the one-line natural-language summary.
func summarizeEntry(entry *memory.Entry, facts []memory.KeyFact, now time.Time) string {
	name := entry.Metadata.Name
	if name == "" {
		name = "Contact"
	}

	if len(entry.Interactions) == 0 {
		return fmt.Sprintf("%s has no recorded interactions yet.", name)
	}

	last := entry.Interactions[0]
	for _, in := range entry.Interactions[1:] {
		if in.Timestamp.After(last.Timestamp) {
			last = in
		}
	}

	s := fmt.Sprintf("%s last contacted %s via %s. Overall sentiment is %s.",
		name, humanizeSince(now.Sub(last.Timestamp)), last.Channel, entry.Sentiment.Overall)

	commitments := 0
	for _, f := range facts {
		if f.Category == memory.CategoryCommitment {
			commitments++
		}
	}
	if commitments == 1 {
		s += " 1 open commitment."
	} else if commitments > 1 {
		s += fmt.Sprintf(" %d open commitments.", commitments)
	}

	return s
}

func humanizeSince(d time.Duration) string {
	days := int(d.Hours() / 24)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 14:
		return fmt.Sprintf("%d days ago", days)
	default:
		return fmt.Sprintf("%d weeks ago", days/7)
	}
}
