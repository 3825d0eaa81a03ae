package kafka_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openclawco/recall/pkg/eventstream"
	"github.com/openclawco/recall/pkg/eventstream/kafka"
)

var _ = Describe("NewPublisher", func() {
	It("requires at least one broker", func() {
		_, err := kafka.NewPublisher(kafka.Config{Topic: "recall.contact.synced"})
		Expect(err).To(MatchError(ContainSubstring("no kafka brokers")))
	})

	It("requires a topic", func() {
		_, err := kafka.NewPublisher(kafka.Config{Brokers: []string{"localhost:9092"}})
		Expect(err).To(MatchError(ContainSubstring("no kafka topic")))
	})

	It("creates a publisher without connecting", func() {
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: []string{"localhost:9092"},
			Topic:   "recall.contact.synced",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Close()).To(Succeed())
	})
})

var _ = Describe("PublishSync", func() {
	It("rejects nil events before touching the wire", func() {
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: []string{"localhost:9092"},
			Topic:   "recall.contact.synced",
		})
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		Expect(p.PublishSync(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
	})
})
