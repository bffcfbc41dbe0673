package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bday/internal/config"
	"bday/internal/db"
	httpx "bday/internal/http"
	"bday/internal/jobs"
	"bday/internal/mail"

	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, _ := config.Load()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect")
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal().Err(err).Msg("database migrate")
	}

	sender := newSender(cfg, log)

	store := &jobs.GormStore{DB: gdb}
	jobsSvc := &jobs.Service{Store: store}
	scheduler := jobs.NewScheduler(store, jobs.SchedulerConfig{
		PollInterval:   cfg.PollInterval,
		MaxConcurrency: cfg.MaxConcurrency,
		RetryBackoff:   cfg.RetryBackoff,
		RetryLimit:     cfg.RetryLimit,
		LockTTL:        cfg.LockTTL,
	}, log, &jobs.BirthdaySender{Mailer: sender})
	scheduler.Start()

	r := httpx.NewRouter(cfg, gdb, jobsSvc, log)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	scheduler.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newSender(cfg config.Config, log zerolog.Logger) mail.Sender {
	switch cfg.MailProvider {
	case "smtp":
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	case "resend":
		return mail.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
	case "log":
		return &mail.LogSender{Log: log}
	default:
		log.Fatal().Str("provider", cfg.MailProvider).Msg("unknown mail provider")
		return nil
	}
}
