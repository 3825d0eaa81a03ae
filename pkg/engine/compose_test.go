package engine_test

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openclawco/recall/pkg/config"
	"github.com/openclawco/recall/pkg/engine"
	"github.com/openclawco/recall/pkg/memory"
)

var _ = Describe("NewFromConfig", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("syncs and reads back through a composed inmemory engine", func() {
		cfg := config.NewDefaultConfig()
		cfg.Storage.Driver = "inmemory"

		eng, err := engine.NewFromConfig(ctx, cfg)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(eng.Close)

		msg := message("m1", time.Now().Add(-time.Hour), "sms", "sounds great, thanks!")
		Expect(eng.SyncFromSource(ctx, "c1", "loc1", "Ada", []memory.RawMessage{msg})).To(Succeed())

		entry, err := eng.GetContactMemory(ctx, "c1")
		Expect(err).NotTo(HaveOccurred())
		Expect(entry.Interactions).To(HaveLen(1))
	})

	It("composes a sqlite-backed engine from the default driver", func() {
		cfg := config.NewDefaultConfig()
		cfg.Storage.SQLitePath = filepath.Join(GinkgoT().TempDir(), "recall.db")

		eng, err := engine.NewFromConfig(ctx, cfg)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(eng.Close)

		msg := message("m1", time.Now().Add(-time.Hour), "email", "let's do Friday")
		Expect(eng.SyncFromSource(ctx, "c1", "loc1", "Ada", []memory.RawMessage{msg})).To(Succeed())
	})

	It("constructs a kafka publisher without connecting", func() {
		cfg := config.NewDefaultConfig()
		cfg.Storage.Driver = "inmemory"
		cfg.Events.Provider = "kafka"
		cfg.Events.Brokers = []string{"localhost:9092"}

		eng, err := engine.NewFromConfig(ctx, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(eng.Close()).To(Succeed())
	})

	It("surfaces a kafka config error", func() {
		cfg := config.NewDefaultConfig()
		cfg.Storage.Driver = "inmemory"
		cfg.Events.Provider = "kafka"

		_, err := engine.NewFromConfig(ctx, cfg)
		Expect(err).To(MatchError(ContainSubstring("no kafka brokers configured")))
	})

	It("rejects an unknown storage driver", func() {
		cfg := config.NewDefaultConfig()
		cfg.Storage.Driver = "redis"

		_, err := engine.NewFromConfig(ctx, cfg)
		Expect(err).To(MatchError(`unsupported storage driver: "redis"`))
	})

	It("rejects an unknown events provider", func() {
		cfg := config.NewDefaultConfig()
		cfg.Storage.Driver = "inmemory"
		cfg.Events.Provider = "rabbitmq"

		_, err := engine.NewFromConfig(ctx, cfg)
		Expect(err).To(MatchError(`unsupported events provider: "rabbitmq"`))
	})
})
