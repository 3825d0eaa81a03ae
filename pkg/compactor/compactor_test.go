package compactor_test

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openclawco/recall/pkg/compactor"
	"github.com/openclawco/recall/pkg/memory"
)

func interactionAt(id string, ts time.Time) memory.Interaction {
	return memory.Interaction{
		ID:        id,
		Timestamp: ts,
		Channel:   memory.ChannelSMS,
		Direction: memory.DirectionInbound,
		Summary:   "summary " + id,
		Sentiment: memory.SentimentNeutral,
	}
}

// daysAgo keeps an hour of slack from the exact cutoff so specs are not
// racing the wall clock.
func daysAgo(days int) time.Time {
	return time.Now().Add(-time.Duration(days)*24*time.Hour - time.Hour)
}

// oldWeek returns the Monday noon of the ISO week containing a point
// roughly 40 days ago. Every offset added within a few hours stays in
// the same ISO week and inside the 30-90 day summarization band.
func oldWeek() time.Time {
	base := daysAgo(40)
	monday := base.AddDate(0, 0, -((int(base.Weekday()) + 6) % 7))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 12, 0, 0, 0, monday.Location())
}

func batch(n int, newest time.Time, spacing time.Duration) []memory.Interaction {
	out := make([]memory.Interaction, 0, n)
	for i := range n {
		out = append(out, interactionAt(fmt.Sprintf("b%d", i), newest.Add(-time.Duration(i)*spacing)))
	}
	return out
}

var _ = Describe("ShouldCompact", func() {
	It("is false below the interaction cap even when everything is old", func() {
		Expect(compactor.ShouldCompact(batch(99, daysAgo(60), time.Minute))).To(BeFalse())
	})

	It("is false at the cap when too few interactions have aged out", func() {
		set := batch(80, daysAgo(1), time.Minute)
		set = append(set, batch(20, daysAgo(45), time.Minute)...)
		Expect(compactor.ShouldCompact(set)).To(BeFalse())
	})

	It("is true at the cap once more than 20 interactions are past the threshold", func() {
		set := batch(79, daysAgo(1), time.Minute)
		set = append(set, batch(21, daysAgo(45), time.Minute)...)
		Expect(compactor.ShouldCompact(set)).To(BeTrue())
	})
})

var _ = Describe("Compact", func() {
	It("preserves the newest 20 interactions regardless of age", func() {
		res := compactor.Compact(batch(25, daysAgo(100), time.Minute))

		Expect(res.Kept).To(HaveLen(20))
		Expect(res.Removed).To(Equal(5))
		Expect(res.Summarized).To(BeZero())
		Expect(res.Kept[0].ID).To(Equal("b0"))
	})

	It("passes interactions younger than 30 days through untouched", func() {
		res := compactor.Compact(batch(40, daysAgo(1), time.Minute))

		Expect(res.Kept).To(HaveLen(40))
		Expect(res.Summarized).To(BeZero())
		Expect(res.Removed).To(BeZero())
	})

	It("folds a week's aged interactions into one summary record", func() {
		week := oldWeek()
		set := batch(20, daysAgo(1), time.Minute)
		for i := range 3 {
			in := interactionAt(fmt.Sprintf("old%d", i), week.Add(time.Duration(i)*time.Hour))
			in.Topics = []string{"pricing"}
			in.Sentiment = memory.SentimentPositive
			set = append(set, in)
		}

		res := compactor.Compact(set)
		Expect(res.Summarized).To(Equal(3))
		Expect(res.Kept).To(HaveLen(21))

		summary := res.Kept[20]
		year, wk := week.ISOWeek()
		Expect(summary.ID).To(Equal(fmt.Sprintf("summary_%d-W%02d", year, wk)))
		Expect(summary.Channel).To(Equal(memory.ChannelOther))
		Expect(summary.Sentiment).To(Equal(memory.SentimentPositive))
		Expect(summary.Topics).To(Equal([]string{"pricing"}))
		Expect(summary.Summary).To(ContainSubstring("3 interactions across sms"))
		Expect(summary.Summary).To(ContainSubstring("Topics: pricing"))
		Expect(summary.Timestamp).To(Equal(week))
	})

	It("keeps a lone aged interaction as-is instead of summarizing it", func() {
		set := batch(20, daysAgo(1), time.Minute)
		set = append(set, interactionAt("lone", oldWeek()))

		res := compactor.Compact(set)
		Expect(res.Summarized).To(BeZero())
		Expect(res.Kept).To(HaveLen(21))
		Expect(res.Kept[20].ID).To(Equal("lone"))
	})

	It("drops interactions past the retention ceiling", func() {
		set := batch(20, daysAgo(1), time.Minute)
		set = append(set, batch(5, daysAgo(100), time.Minute)...)

		res := compactor.Compact(set)
		Expect(res.Removed).To(Equal(5))
		Expect(res.Kept).To(HaveLen(20))
	})

	It("truncates to the cap newest-first when summaries alone exceed it", func() {
		res := compactor.Compact(batch(120, daysAgo(1), time.Minute))

		Expect(res.CompactedCount).To(Equal(compactor.MaxInteractions))
		Expect(res.Removed).To(Equal(20))
		Expect(res.Kept[0].ID).To(Equal("b0"))
		Expect(res.Kept[99].ID).To(Equal("b99"))
	})

	It("bounds a heavily backlogged contact", func() {
		set := batch(30, daysAgo(1), time.Minute)
		for i := range 100 {
			set = append(set, interactionAt(fmt.Sprintf("mid%d", i), daysAgo(35).Add(-time.Duration(i)*13*time.Hour)))
		}
		set = append(set, batch(20, daysAgo(95), time.Minute)...)

		Expect(compactor.ShouldCompact(set)).To(BeTrue())

		res := compactor.Compact(set)
		Expect(res.OriginalCount).To(Equal(150))
		Expect(res.CompactedCount).To(BeNumerically("<=", compactor.MaxInteractions))
		Expect(res.CompactedCount).To(Equal(len(res.Kept)))
		Expect(res.Summarized).To(BeNumerically(">", 0))
		Expect(res.Removed).To(BeNumerically(">=", 20))

		for i := 1; i < len(res.Kept); i++ {
			Expect(res.Kept[i].Timestamp.After(res.Kept[i-1].Timestamp)).To(BeFalse())
		}
	})
})

var _ = Describe("Truncate", func() {
	It("drops everything past the cap, newest first, without summarizing", func() {
		res := compactor.Truncate(batch(150, daysAgo(1), time.Minute))

		Expect(res.OriginalCount).To(Equal(150))
		Expect(res.CompactedCount).To(Equal(compactor.MaxInteractions))
		Expect(res.Removed).To(Equal(50))
		Expect(res.Summarized).To(BeZero())
		Expect(res.Kept[0].ID).To(Equal("b0"))
		Expect(res.Kept[99].ID).To(Equal("b99"))
	})

	It("leaves sets at or below the cap alone", func() {
		res := compactor.Truncate(batch(80, daysAgo(1), time.Minute))

		Expect(res.Removed).To(BeZero())
		Expect(res.Kept).To(HaveLen(80))
		Expect(res.Kept[0].ID).To(Equal("b0"))
	})
})
