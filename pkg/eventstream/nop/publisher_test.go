package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openclawco/recall/pkg/eventstream"
	"github.com/openclawco/recall/pkg/eventstream/nop"
)

var _ = Describe("Publisher", func() {
	It("discards valid events", func() {
		p := nop.NewPublisher()
		event := &eventstream.ContactSyncedEvent{ContactID: "c1"}
		Expect(p.PublishSync(context.Background(), event)).To(Succeed())
	})

	It("rejects nil events", func() {
		p := nop.NewPublisher()
		Expect(p.PublishSync(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
	})

	It("closes without error", func() {
		Expect(nop.NewPublisher().Close()).To(Succeed())
	})
})
