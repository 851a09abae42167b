package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ariefcatur/go-rental-admin.git/internal/config"
	kafkax "github.com/ariefcatur/go-rental-admin.git/internal/kafka"
	"github.com/ariefcatur/go-rental-admin.git/internal/notifier"
	"github.com/ariefcatur/go-rental-admin.git/internal/redisx"
	"github.com/ariefcatur/go-rental-admin.git/internal/reservations"
	"github.com/joho/godotenv"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TelegramToken == "" || cfg.TelegramAdminChat == "" {
		log.Fatal("TELEGRAM_TOKEN and TELEGRAM_ADMIN_CHAT are required")
	}

	// Redis (dedup)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Service
	svc := &notifier.Service{
		Redis:       rdb,
		Sender:      notifier.NewTelegramSender(cfg.TelegramToken, cfg.TelegramAdminChat),
		ServiceName: cfg.ServiceName + "-notifier",
	}

	// Consumer
	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, reservations.TopicReservationCreated, workers)

	go func() {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d", group, reservations.TopicReservationCreated, workers)
		if err := cons.Start(ctx, svc.HandleReservationCreated); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
