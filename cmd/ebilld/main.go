// Command ebilld runs the unattended side of an e-bill node: the bill
// action engine's background collaborators (payment reconciliation
// scheduler and relay consumer), plus a /healthz and /metrics admin surface.
// It carries no business HTTP API; operator actions go through ebillcli.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/bitbill-network/ebill-core/core/action"
	"github.com/bitbill-network/ebill-core/core/bitcoin"
	"github.com/bitbill-network/ebill-core/core/billcache"
	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/consumer"
	"github.com/bitbill-network/ebill-core/core/metrics"
	"github.com/bitbill-network/ebill-core/core/pushbus"
	"github.com/bitbill-network/ebill-core/core/scheduler"
	"github.com/bitbill-network/ebill-core/core/store/filestore"
	"github.com/bitbill-network/ebill-core/core/transport"
	"github.com/bitbill-network/ebill-core/pkg/config"
	"github.com/bitbill-network/ebill-core/pkg/utils"
)

func main() {
	env := os.Getenv("EBILL_ENV")
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ebilld: load config: %v\n", err)
		os.Exit(1)
	}

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.WithError(err).Fatal("open log file")
		}
		defer f.Close()
		log.SetOutput(f)
	}
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := os.MkdirAll(cfg.Node.DataDir, 0o700); err != nil {
		log.WithError(err).Fatal("create data dir")
	}

	ids, err := filestore.NewIdentityStore(cfg.Node.DataDir)
	if err != nil {
		log.WithError(err).Fatal("open identity store")
	}
	ctx := context.Background()
	self, err := ids.Get(ctx)
	if err != nil {
		log.WithError(err).Fatal("no local identity configured; run `ebillcli identity init` first")
	}

	blocks, err := filestore.NewBlockStore(cfg.Node.DataDir + "/blocks")
	if err != nil {
		log.WithError(err).Fatal("open block store")
	}
	bills, err := filestore.NewBillStore(cfg.Node.DataDir)
	if err != nil {
		log.WithError(err).Fatal("open bill store")
	}
	notifications, err := filestore.NewNotificationStore(cfg.Node.DataDir)
	if err != nil {
		log.WithError(err).Fatal("open notification store")
	}
	offsets, err := filestore.NewNostrOffsetStore(cfg.Node.DataDir)
	if err != nil {
		log.WithError(err).Fatal("open offset store")
	}
	queue, err := filestore.NewNostrQueueStore(cfg.Node.DataDir)
	if err != nil {
		log.WithError(err).Fatal("open outbox queue store")
	}

	cacheSize := utils.EnvOrDefaultInt("EBILL_BILL_CACHE_SIZE", cfg.Storage.BillCacheSz)
	cache, err := billcache.New(cacheSize)
	if err != nil {
		log.WithError(err).Fatal("build bill cache")
	}

	engine := action.New(blocks, bills, notifications, cache)
	engine.Queue = queue
	engine.SelfNodeID = self.NodeID
	engine.Log = log.WithField("component", "action")

	network := &chaincfg.MainNetParams
	if cfg.Bitcoin.Network == "testnet" {
		network = &chaincfg.TestNet3Params
	}
	engine.Network = network
	btc := bitcoin.NewEsploraClient(cfg.Bitcoin.EsploraURL)

	reg := prometheus.NewRegistry()
	for _, c := range metrics.Collectors() {
		reg.MustRegister(c)
	}

	relayCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	relay, err := transport.NewPubSubRelay(relayCtx, log)
	if err != nil {
		log.WithError(err).Fatal("start relay")
	}
	defer relay.Close()

	outbox := transport.NewOutbox(queue, relay, cfg.Relay.MaxPerSecond, log)
	outbox.Sender = transport.TopicSender

	bus := pushbus.New()
	selfKey := chain.MessagingKeyFromPublicKey(self.Keys.Public)
	topic := transport.MessagingTopic(selfKey)

	jobDeps := &scheduler.Deps{
		Engine:         engine,
		Bitcoin:        btc,
		Bills:          bills,
		Notifications:  notifications,
		Network:        network,
		Signer:         action.Signer{Keys: self.Keys, SignatoryNodeID: self.NodeID},
		Now:            func() uint64 { return uint64(time.Now().Unix()) },
		Log:            log,
		PollInterval:   time.Duration(utils.EnvOrDefaultUint64("EBILL_BITCOIN_POLL_INTERVAL_SECONDS", uint64(cfg.Bitcoin.PollInterval))) * time.Second,
		BitcoinLimiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	sched := scheduler.New(log,
		scheduler.CheckBillPayment(jobDeps),
		scheduler.CheckOfferToSellPayment(jobDeps),
		scheduler.CheckRecoursePayment(jobDeps),
		scheduler.CheckTimeouts(jobDeps),
	)
	sched.Start(relayCtx)

	go outbox.Run(relayCtx, time.Duration(cfg.Relay.OutboxInterval)*time.Second)

	cons := consumer.New(self.NodeID, selfKey, relay, offsets, blocks, bills, notifications, cache, bus,
		func() uint64 { return uint64(time.Now().Unix()) }, log)
	go func() {
		if err := cons.Run(relayCtx, topic); err != nil && relayCtx.Err() == nil {
			log.WithError(err).Error("consumer stopped")
		}
	}()

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: r}
	go func() {
		log.WithField("addr", cfg.Metrics.ListenAddr).Info("admin surface listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("admin surface stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
