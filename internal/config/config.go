package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	BotToken        string
	AdminChatID     int64
	RefLink         string
	SupportUsername string
	DBUser          string
	DBPassword      string
	DBName          string
	DBHost          string
	DBPort          string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
}

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("config.Load: no .env file found - using env variables")
	}

	cfg := &Config{
		BotToken:        os.Getenv("BOT_TOKEN"),
		RefLink:         os.Getenv("REF_LINK"),
		SupportUsername: os.Getenv("SUPPORT_USERNAME"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		DBHost:          os.Getenv("DB_HOST"),
		DBPort:          os.Getenv("DB_PORT"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("config.Load: BOT_TOKEN is required")
	}

	adminChatID := os.Getenv("ADMIN_CHAT_ID")
	if adminChatID == "" {
		return nil, fmt.Errorf("config.Load: ADMIN_CHAT_ID is required")
	}

	cfg.AdminChatID, err = strconv.ParseInt(adminChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("config.Load: ADMIN_CHAT_ID must be a number: %w", err)
	}

	if cfg.RefLink == "" {
		return nil, fmt.Errorf("config.Load: REF_LINK is required")
	}

	if cfg.DBUser == "" || cfg.DBPassword == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("config.Load: DB_USER, DB_PASSWORD, DB_NAME are required")
	}

	if cfg.SupportUsername == "" {
		cfg.SupportUsername = "@otututu"
	}

	if cfg.DBHost == "" {
		cfg.DBHost = "localhost"
	}

	if cfg.DBPort == "" {
		cfg.DBPort = "5432"
	}

	cfg.DBMaxOpenConns, err = intEnv("DB_MAX_OPEN_CONNS", 20)
	if err != nil {
		return nil, err
	}

	cfg.DBMaxIdleConns, err = intEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func intEnv(name string, defaultValue int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config.Load: %s must be a number: %w", name, err)
	}

	return value, nil
}
