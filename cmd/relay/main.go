package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"donation-relay/relay"
	"donation-relay/relay/application"
	"donation-relay/relay/domain"
	"donation-relay/relay/infra"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ingestStore := infra.NewWindowStore(cfg.ingestRateMax, cfg.ingestRateWindow,
		infra.WithWindowCleanupEvery(cfg.cleanupEvery))
	pollStore := infra.NewWindowStore(cfg.pollRateMax, cfg.pollRateWindow,
		infra.WithWindowCleanupEvery(cfg.cleanupEvery))
	dedupe := infra.NewDedupeTracker(cfg.dedupeHorizon, cfg.donorCooldown,
		infra.WithDedupeCleanupEvery(cfg.cleanupEvery))
	queue := infra.NewQueue(cfg.queueTTL, cfg.displayBuffer,
		infra.WithQueueCleanupEvery(cfg.cleanupEvery))

	var audit domain.AuditStore = infra.NewMemoryAuditStore()
	if cfg.auditRedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.auditRedisAddr,
			Password: cfg.auditRedisPassword,
			DB:       cfg.auditRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis audit ping error: %v", err)
		}

		audit = infra.NewRedisAuditStore(rdb,
			infra.WithAuditPrefix(cfg.auditPrefix),
			infra.WithAuditTTL(cfg.auditTTL),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ingestStore.StartJanitor(ctx)
	pollStore.StartJanitor(ctx)
	dedupe.StartJanitor(ctx)
	queue.StartJanitor(ctx)

	srvHandlers := &relay.Server{
		Ingest: application.NewIngest(ingestStore, dedupe, queue, audit, cfg.amountCeiling),
		Poll:   application.NewPoll(pollStore, queue, audit),
		List:   application.NewList(queue),
		KeyFn:  relay.SourceKeyFunc(cfg.trustXFF),
	}

	h := srvHandlers.Routes()
	h = relay.ConcurrencyMiddleware(relay.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		AcquireTimeout: cfg.concurrencyTimeout,
	})(h)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("donation relay listening on %s", cfg.listenAddr)
	log.Printf("ingest: max=%d window=%s cooldown=%s horizon=%s ceiling=%d trustXFF=%v",
		cfg.ingestRateMax, cfg.ingestRateWindow, cfg.donorCooldown, cfg.dedupeHorizon, cfg.amountCeiling, cfg.trustXFF)
	log.Printf("poll: max=%d window=%s queueTTL=%s displayBuffer=%s",
		cfg.pollRateMax, cfg.pollRateWindow, cfg.queueTTL, cfg.displayBuffer)
	log.Printf("audit: redisAddr=%q prefix=%q ttl=%s", cfg.auditRedisAddr, cfg.auditPrefix, cfg.auditTTL)
	log.Printf("concurrency: max=%d acquireTimeout=%s", cfg.concurrencyMax, cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

type config struct {
	listenAddr string
	trustXFF   bool

	ingestRateMax    int
	ingestRateWindow time.Duration
	pollRateMax      int
	pollRateWindow   time.Duration

	donorCooldown time.Duration
	dedupeHorizon time.Duration
	queueTTL      time.Duration
	displayBuffer time.Duration
	amountCeiling int64
	cleanupEvery  time.Duration

	concurrencyMax     int
	concurrencyTimeout time.Duration

	auditRedisAddr     string
	auditRedisPassword string
	auditRedisDB       int
	auditPrefix        string
	auditTTL           time.Duration
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", true)

	cfg.ingestRateMax = getenvIntDefault("INGEST_RATE_MAX", 30)
	cfg.ingestRateWindow = getenvDurationDefault("INGEST_RATE_WINDOW", 1*time.Minute)
	cfg.pollRateMax = getenvIntDefault("POLL_RATE_MAX", 10)
	cfg.pollRateWindow = getenvDurationDefault("POLL_RATE_WINDOW", 1*time.Second)

	cfg.donorCooldown = getenvDurationDefault("DONOR_COOLDOWN", 10*time.Second)
	cfg.dedupeHorizon = getenvDurationDefault("DEDUPE_HORIZON", 1*time.Hour)
	cfg.queueTTL = getenvDurationDefault("QUEUE_TTL", 60*time.Second)
	cfg.displayBuffer = getenvDurationDefault("DISPLAY_BUFFER", 10*time.Second)
	cfg.amountCeiling = getenvInt64Default("AMOUNT_CEILING", 999_999_999)
	cfg.cleanupEvery = getenvDurationDefault("CLEANUP_EVERY", 30*time.Second)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.auditRedisAddr = strings.TrimSpace(os.Getenv("AUDIT_REDIS_ADDR"))
	cfg.auditRedisPassword = os.Getenv("AUDIT_REDIS_PASSWORD")
	cfg.auditRedisDB = getenvIntDefault("AUDIT_REDIS_DB", 0)
	cfg.auditPrefix = getenvDefault("AUDIT_PREFIX", "relay:audit")
	cfg.auditTTL = getenvDurationDefault("AUDIT_TTL", 24*time.Hour)

	if cfg.ingestRateMax <= 0 || cfg.pollRateMax <= 0 {
		return config{}, errors.New("INGEST_RATE_MAX and POLL_RATE_MAX must be > 0")
	}
	if cfg.ingestRateWindow <= 0 || cfg.pollRateWindow <= 0 {
		return config{}, errors.New("rate windows must be > 0")
	}
	if cfg.queueTTL <= 0 || cfg.displayBuffer <= 0 {
		return config{}, errors.New("QUEUE_TTL and DISPLAY_BUFFER must be > 0")
	}
	if cfg.amountCeiling <= 0 {
		return config{}, errors.New("AMOUNT_CEILING must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvInt64Default(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
