package indexer_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openclawco/recall/pkg/indexer"
	"github.com/openclawco/recall/pkg/memory"
)

func rawMessage(id, channel, body string) memory.RawMessage {
	return memory.RawMessage{
		ID:        id,
		Timestamp: time.Date(2026, 8, 20, 15, 4, 0, 0, time.UTC),
		Channel:   channel,
		Direction: memory.DirectionOutbound,
		Body:      body,
	}
}

var _ = Describe("IndexMessages", func() {
	It("indexes the callback scenario end to end", func() {
		msgs := []memory.RawMessage{
			rawMessage("m1", "sms", "I'll call you back tomorrow at 3:00pm, thanks!"),
		}

		interactions := indexer.IndexMessages(msgs)
		Expect(interactions).To(HaveLen(1))

		in := interactions[0]
		Expect(in.ID).To(Equal("m1"))
		Expect(in.Channel).To(Equal(memory.ChannelSMS))
		Expect(in.Sentiment).To(Equal(memory.SentimentPositive))

		var values []string
		for _, e := range in.Entities {
			values = append(values, e.Value)
		}
		Expect(values).To(ContainElement("tomorrow"))
		Expect(values).To(ContainElement("3:00pm"))

		facts := indexer.ExtractKeyFacts(interactions, "c1")
		Expect(facts).To(HaveLen(1))
		Expect(facts[0].Fact).To(Equal("Commitment: call you back tomorrow at 3:00pm"))
		Expect(facts[0].Category).To(Equal(memory.CategoryCommitment))
		Expect(facts[0].Confidence).To(Equal(0.7))
		Expect(facts[0].Source).To(Equal("m1"))
	})

	It("treats empty bodies as empty extractions, not failures", func() {
		interactions := indexer.IndexMessages([]memory.RawMessage{
			rawMessage("m1", "email", ""),
		})

		Expect(interactions).To(HaveLen(1))
		Expect(interactions[0].Summary).To(BeEmpty())
		Expect(interactions[0].Entities).To(BeEmpty())
		Expect(interactions[0].Topics).To(BeEmpty())
		Expect(interactions[0].Sentiment).To(Equal(memory.SentimentNeutral))
	})

	It("maps unknown channel labels to other", func() {
		interactions := indexer.IndexMessages([]memory.RawMessage{
			rawMessage("m1", "fax", "hello there"),
		})
		Expect(interactions[0].Channel).To(Equal(memory.ChannelOther))
	})

	It("truncates summaries to 100 characters with an ellipsis", func() {
		long := ""
		for range 30 {
			long += "sentence "
		}

		interactions := indexer.IndexMessages([]memory.RawMessage{
			rawMessage("m1", "sms", long),
		})

		summary := interactions[0].Summary
		Expect([]rune(summary)).To(HaveLen(103))
		Expect(summary).To(HaveSuffix("..."))
		Expect(interactions[0].FullContent).To(Equal(long))
	})

	It("extracts currency amounts with 0.9 confidence", func() {
		interactions := indexer.IndexMessages([]memory.RawMessage{
			rawMessage("m1", "email", "The quote is $1,250.50 for the annual plan."),
		})

		var price *memory.Entity
		for i := range interactions[0].Entities {
			if interactions[0].Entities[i].Type == memory.EntityPrice {
				price = &interactions[0].Entities[i]
			}
		}
		Expect(price).NotTo(BeNil())
		Expect(price.Value).To(Equal("$1,250.50"))
		Expect(price.Confidence).To(Equal(0.9))
	})

	It("extracts numeric dates and weekday names", func() {
		interactions := indexer.IndexMessages([]memory.RawMessage{
			rawMessage("m1", "sms", "Can we meet on Friday or 9/15/2026 instead?"),
		})

		var dates []string
		for _, e := range interactions[0].Entities {
			if e.Type == memory.EntityDate {
				dates = append(dates, e.Value)
				Expect(e.Confidence).To(Equal(0.8))
			}
		}
		Expect(dates).To(ConsistOf("Friday", "9/15/2026"))
	})

	It("deduplicates topics per interaction", func() {
		interactions := indexer.IndexMessages([]memory.RawMessage{
			rawMessage("m1", "email", "What's the price? The pricing page says cost varies."),
		})
		Expect(interactions[0].Topics).To(Equal([]string{"pricing"}))
	})

	It("tags multiple topics from the fixed taxonomy", func() {
		interactions := indexer.IndexMessages([]memory.RawMessage{
			rawMessage("m1", "webchat", "I need help with my invoice and want to reschedule the demo."),
		})
		Expect(interactions[0].Topics).To(ConsistOf("scheduling", "support", "product", "billing"))
	})

	It("classifies net-negative bodies as negative", func() {
		interactions := indexer.IndexMessages([]memory.RawMessage{
			rawMessage("m1", "phone", "This is terrible, I want to cancel."),
		})
		Expect(interactions[0].Sentiment).To(Equal(memory.SentimentNegative))
	})

	It("is deterministic for identical input", func() {
		msg := rawMessage("m1", "sms", "Meet Tuesday at 10:30am, the cost is $500.")

		first := indexer.IndexMessages([]memory.RawMessage{msg})
		second := indexer.IndexMessages([]memory.RawMessage{msg})
		Expect(first[0].Entities).To(Equal(second[0].Entities))
		Expect(first[0].Topics).To(Equal(second[0].Topics))
		Expect(first[0].Sentiment).To(Equal(second[0].Sentiment))
	})
})

var _ = Describe("ExtractKeyFacts", func() {
	index := func(body string) []memory.Interaction {
		return indexer.IndexMessages([]memory.RawMessage{rawMessage("m1", "sms", body)})
	}

	It("extracts preference facts at 0.6 confidence", func() {
		facts := indexer.ExtractKeyFacts(index("I prefer email over phone calls."), "c1")

		Expect(facts).To(HaveLen(1))
		Expect(facts[0].Fact).To(Equal("Preference: email over phone calls"))
		Expect(facts[0].Category).To(Equal(memory.CategoryPreference))
		Expect(facts[0].Confidence).To(Equal(0.6))
	})

	It("extracts at most one objection per interaction", func() {
		facts := indexer.ExtractKeyFacts(index("That looks great but it seems expensive. However we might wait."), "c1")

		objections := 0
		for _, f := range facts {
			if f.Category == memory.CategoryObjection {
				objections++
			}
		}
		Expect(objections).To(Equal(1))
	})

	It("discards clauses shorter than 6 characters", func() {
		facts := indexer.ExtractKeyFacts(index("I'll try."), "c1")
		Expect(facts).To(BeEmpty())
	})

	It("discards clauses of 200 characters or more", func() {
		clause := ""
		for range 40 {
			clause += "again "
		}
		facts := indexer.ExtractKeyFacts(index("I'll "+clause), "c1")
		Expect(facts).To(BeEmpty())
	})

	It("assigns deterministic per-contact fact ids", func() {
		interactions := index("I'll send the contract over tonight.")

		first := indexer.ExtractKeyFacts(interactions, "c1")
		second := indexer.ExtractKeyFacts(interactions, "c1")
		Expect(first[0].ID).To(Equal(second[0].ID))
		Expect(first[0].ID).To(HavePrefix("c1_fact_"))
	})
})
