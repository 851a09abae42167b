package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-rental-admin.git/internal/config"
	"github.com/ariefcatur/go-rental-admin.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-rental-admin.git/internal/kafka"
	"github.com/ariefcatur/go-rental-admin.git/internal/postgres"
	"github.com/ariefcatur/go-rental-admin.git/internal/redisx"
	"github.com/ariefcatur/go-rental-admin.git/internal/reservations"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: satu per topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, reservations.TopicReservationCreated, 1024)
	pCreated.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, reservations.TopicStatusChanged, 1024)
	pStatus.Start(ctx)
	pDeleted := kafkax.NewProducer(cfg.KafkaBrokers, reservations.TopicReservationDeleted, 1024)
	pDeleted.Start(ctx)

	// Repo, lifecycle & handler
	repo := &reservations.Repo{DB: db}
	lc := &reservations.Lifecycle{
		Store:           repo,
		ProducerStatus:  pStatus,
		ProducerDeleted: pDeleted,
		Service:         cfg.ServiceName,
	}
	router := httpx.NewRouter()
	rh := &httpx.ReservationsHandler{
		Store:     repo,
		Lifecycle: lc,
		Producer:  pCreated,
		Redis:     rdb,
		Service:   cfg.ServiceName,
		Capacity:  cfg.InventoryUnits,
		Validate:  validator.New(),
	}
	rh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreated.Close() // tutup inbox -> flush & close writer
	pStatus.Close()
	pDeleted.Close()
	cancel() // stop producer loop
	pCreated.WaitClosed()
	pStatus.WaitClosed()
	pDeleted.WaitClosed()
}
