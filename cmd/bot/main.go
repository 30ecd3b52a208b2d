package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/elsisiem/muthaker-bot/internal/bot"
	"github.com/elsisiem/muthaker-bot/internal/config"
	"github.com/elsisiem/muthaker-bot/internal/database"
	"github.com/elsisiem/muthaker-bot/internal/planner"
	"github.com/elsisiem/muthaker-bot/internal/poster"
	"github.com/elsisiem/muthaker-bot/internal/prayertimes"
	"github.com/elsisiem/muthaker-bot/internal/repository"
	"github.com/elsisiem/muthaker-bot/internal/scheduler"
	"github.com/elsisiem/muthaker-bot/internal/server"
	"github.com/elsisiem/muthaker-bot/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate required config
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.ChatID == 0 {
		log.Fatal("TELEGRAM_CHAT_ID is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", cfg.Timezone, err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database (optional; without it the athkar replace
	// lifecycle only spans the process lifetime)
	var record poster.MessageRecord = poster.NewMemoryRecord()
	var mirror poster.PageMirror
	if cfg.DatabaseURI != "" {
		db, err := database.New(ctx, cfg.DatabaseURI)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Connected to database")

		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database migrations completed")

		record = repository.NewAthkarMessageRepository(db)
		mirror = repository.NewBotStateRepository(db)
	} else {
		log.Println("DATABASE_URI not set, running with in-memory message records")
	}

	// Create Telegram API client for the poster
	tgAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram API: %v", err)
	}
	messenger := telegram.New(tgAPI)

	// Wire the planning pipeline
	times := prayertimes.New(cfg.City, cfg.Country, cfg.Method, cfg.Latitude, cfg.Longitude, loc)
	offsets := planner.Offsets{
		Morning: cfg.MorningOffset,
		Evening: cfg.EveningOffset,
		Quran:   cfg.QuranOffset,
	}
	plan := planner.New(times, offsets, loc)
	post := poster.New(messenger, record, mirror, cfg.ChatID, cfg.AthkarURL, cfg.QuranPagesURL)

	// Create and start scheduler
	sched := scheduler.New(plan, post, loc)
	go sched.Start(ctx)

	// Keep-alive / status endpoints
	srv := server.New(sched, cfg.HTTPPort)
	go func() {
		if err := srv.Start(ctx); err != nil {
			log.Printf("Status server error: %v", err)
		}
	}()

	// Create and start bot
	b, err := bot.New(cfg.TelegramToken, sched, cfg.AdminID, loc)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	log.Println("Starting bot...")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot error: %v", err)
	}
}
