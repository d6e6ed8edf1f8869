package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/trogers1052/portfolio-advisor/internal/advisor"
	"github.com/trogers1052/portfolio-advisor/internal/api"
	"github.com/trogers1052/portfolio-advisor/internal/config"
	"github.com/trogers1052/portfolio-advisor/internal/database"
	"github.com/trogers1052/portfolio-advisor/internal/gateway"
	kafkaproducer "github.com/trogers1052/portfolio-advisor/internal/kafka"
	"github.com/trogers1052/portfolio-advisor/internal/lock"
	"github.com/trogers1052/portfolio-advisor/internal/risk"
	"github.com/trogers1052/portfolio-advisor/internal/scheduler"
	"github.com/trogers1052/portfolio-advisor/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	producer := kafkaproducer.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()

	providers := []gateway.Provider{
		gateway.NewAlphaVantageProvider(cfg.Providers.AlphaVantageKey, cfg.Providers.HTTPTimeout),
		gateway.NewYahooProvider(cfg.Providers.HTTPTimeout),
	}
	gw, err := gateway.New(providers, gateway.Options{
		MaxRetries:       cfg.Providers.MaxRetries,
		RetryBaseDelay:   cfg.Providers.RetryBaseDelay,
		BreakerThreshold: cfg.Providers.BreakerThreshold,
		BreakerCooldown:  cfg.Providers.BreakerCooldown,
		CacheCapacity:    cfg.Providers.CacheCapacity,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway")
	}

	riskEngine := risk.NewEngine(log)
	adv := advisor.New(db, gw, producer, riskEngine, log)

	window, err := scheduler.NewTradingWindow(cfg.Schedule.Timezone, cfg.Schedule.OpenHour, cfg.Schedule.CloseHour)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid trading window")
	}

	sched := scheduler.New(lock.NewRedisLocker(redisClient), window, scheduler.LockConfig{
		TTL:        cfg.Schedule.LockTTL,
		Retries:    cfg.Schedule.LockRetries,
		RetryDelay: cfg.Schedule.LockRetryWait,
	}, log)

	jobs := []scheduler.Job{
		{Name: "quote-refresh", Spec: "0 */15 * * * MON-FRI", WindowOnly: true, Run: adv.RefreshQuotes},
		{Name: "decision-refresh", Spec: "0 */5 * * * MON-FRI", WindowOnly: true, Run: adv.RefreshDecisions},
		{Name: "risk-tick", Spec: "0 */2 * * * MON-FRI", WindowOnly: true, Run: func(ctx context.Context) error {
			_, err := adv.RecomputeRisk(ctx)
			return err
		}},
		{Name: "window-open-refresh", Spec: fmt.Sprintf("0 0 %d * * MON-FRI", cfg.Schedule.OpenHour), Run: adv.RefreshDecisions},
		{Name: "window-close-refresh", Spec: fmt.Sprintf("0 0 %d * * MON-FRI", cfg.Schedule.CloseHour), Run: adv.RefreshDecisions},
		{Name: "daily-volatility", Spec: fmt.Sprintf("0 30 %d * * MON-FRI", cfg.Schedule.HourAfterClose(1)), Run: adv.RecomputeVolatility},
		{Name: "daily-backfill", Spec: fmt.Sprintf("0 0 %d * * MON-FRI", cfg.Schedule.HourAfterClose(2)), Run: adv.BackfillHistory},
	}
	for _, job := range jobs {
		if err := sched.Register(job); err != nil {
			log.Fatal().Err(err).Str("job", job.Name).Msg("failed to register job")
		}
	}
	sched.Start()
	defer sched.Stop()

	handler := api.NewHandler(db, gw, adv, sched, log)
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      api.SetupRoutes(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
