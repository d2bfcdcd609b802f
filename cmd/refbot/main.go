package main

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"github.com/otututu/tbank_ref_bot/internal/bot"
	"github.com/otututu/tbank_ref_bot/internal/collector"
	"github.com/otututu/tbank_ref_bot/internal/config"
	"github.com/otututu/tbank_ref_bot/internal/db"
	"github.com/otututu/tbank_ref_bot/internal/review"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	database, err := db.New(cfg)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer database.Close()

	err = db.RunMigrations(database.Conn, "db_scripts/init.sql")
	if err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Error creating telegram bot: %v", err)
	}

	applicationRepo := db.NewApplicationRepository(database.Conn)
	notifier := bot.NewNotifier(botAPI, cfg.AdminChatID, cfg.SupportUsername)

	coll := collector.New(applicationRepo, notifier)
	dispatcher := review.New(cfg.AdminChatID, applicationRepo, notifier)

	botService := bot.New(botAPI, coll, dispatcher, cfg)

	log.Printf("Bot started as @%s", botAPI.Self.UserName)

	botService.Start()
}
