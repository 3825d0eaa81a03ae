// Package indexer turns batches of raw communication records into
// structured interactions and derives key-fact candidates from them.
//
// Extraction is purely lexical — fixed regex classes, keyword taxonomies
// and word-list votes with fixed confidence scores. The same input always
// yields the same output, and malformed or missing bodies degrade to
// empty extractions rather than failing a sync.
package indexer

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/openclawco/recall/pkg/memory"
)

const (
	// summaryMaxLen bounds the interaction display summary.
	summaryMaxLen = 100

	dateConfidence  = 0.8
	timeConfidence  = 0.8
	priceConfidence = 0.9
)

var (
	dateWordRe    = regexp.MustCompile(`(?i)\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|today|tomorrow|yesterday|next week)\b`)
	dateNumericRe = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)
	timeRe        = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s?(?:am|pm)?\b`)
	priceRe       = regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{1,2})?`)
)

// topicKeywords is the fixed taxonomy. A message contributes a topic if
// any keyword appears as a case-insensitive substring of the body.
var topicKeywords = map[string][]string{
	"pricing":    {"price", "pricing", "cost", "quote", "discount", "rate"},
	"scheduling": {"schedule", "appointment", "meeting", "reschedule", "calendar", "availability"},
	"support":    {"help", "support", "issue", "problem", "broken", "not working"},
	"product":    {"product", "feature", "demo", "trial", "upgrade"},
	"billing":    {"billing", "invoice", "payment", "charge", "refund", "subscription"},
}

var (
	positiveWords = []string{"thanks", "thank", "great", "good", "awesome", "perfect", "excellent", "love", "happy", "appreciate", "wonderful", "yes"}
	negativeWords = []string{"bad", "terrible", "angry", "unhappy", "hate", "awful", "disappointed", "frustrated", "upset", "cancel", "worst", "annoyed"}
)

// IndexMessages converts a batch of raw messages into structured
// interactions. It never fails: missing bodies are treated as empty and
// unknown channel labels map to [memory.ChannelOther].
func IndexMessages(msgs []memory.RawMessage) []memory.Interaction {
	interactions := make([]memory.Interaction, 0, len(msgs))

	for _, msg := range msgs {
		body := msg.Body

		id := msg.ID
		if id == "" {
			id = uuid.NewString()
		}

		interactions = append(interactions, memory.Interaction{
			ID:          id,
			Timestamp:   msg.Timestamp,
			Channel:     memory.ParseChannel(msg.Channel),
			Direction:   msg.Direction,
			Summary:     summarize(body),
			FullContent: body,
			Entities:    extractEntities(body),
			Sentiment:   classifySentiment(body),
			Topics:      extractTopics(body),
		})
	}

	return interactions
}

// summarize returns the first 100 characters of the body, marked with an
// ellipsis when truncated. Cheap display string only.
func summarize(body string) string {
	runes := []rune(body)
	if len(runes) <= summaryMaxLen {
		return body
	}
	return string(runes[:summaryMaxLen]) + "..."
}

func extractEntities(body string) []memory.Entity {
	var entities []memory.Entity

	for _, m := range dateWordRe.FindAllString(body, -1) {
		entities = append(entities, memory.Entity{Type: memory.EntityDate, Value: m, Confidence: dateConfidence})
	}
	for _, m := range dateNumericRe.FindAllString(body, -1) {
		entities = append(entities, memory.Entity{Type: memory.EntityDate, Value: m, Confidence: dateConfidence})
	}
	for _, m := range timeRe.FindAllString(body, -1) {
		entities = append(entities, memory.Entity{Type: memory.EntityTime, Value: strings.TrimSpace(m), Confidence: timeConfidence})
	}
	for _, m := range priceRe.FindAllString(body, -1) {
		entities = append(entities, memory.Entity{Type: memory.EntityPrice, Value: m, Confidence: priceConfidence})
	}

	return entities
}

func extractTopics(body string) []string {
	lower := strings.ToLower(body)

	var topics []string
	for _, topic := range []string{"pricing", "scheduling", "support", "product", "billing"} {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(lower, kw) {
				topics = append(topics, topic)
				break
			}
		}
	}

	return topics
}

// classifySentiment runs the lexicon vote: net positive token count wins
// positive, net negative wins negative, ties (including zero matches) are
// neutral.
func classifySentiment(body string) memory.Sentiment {
	tokens := tokenize(body)

	var pos, neg int
	for _, tok := range tokens {
		for _, w := range positiveWords {
			if tok == w {
				pos++
				break
			}
		}
		for _, w := range negativeWords {
			if tok == w {
				neg++
				break
			}
		}
	}

	switch {
	case pos > neg:
		return memory.SentimentPositive
	case neg > pos:
		return memory.SentimentNegative
	default:
		return memory.SentimentNeutral
	}
}

func tokenize(body string) []string {
	return strings.FieldsFunc(strings.ToLower(body), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
}
