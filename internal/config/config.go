package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	API struct {
		Port     string
		BasePath string
	}
	Logging struct {
		Dir   string
		Level string
	}
	Sheets struct {
		BaseURL       string
		Timeout       time.Duration
		RetryAttempts int
	}
	Notification struct {
		WarningThreshold float64
		DangerThreshold  float64
		CooldownMinutes  int
	}
	Workload struct {
		ImbalanceThreshold float64
		TaskPageSize       int
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	Email struct {
		SMTPServer string
		SMTPPort   int
		Username   string
		Password   string
		To         string
	}
	Telegram struct {
		BotToken      string
		ChatID        int64
		RatePerSecond int
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Logging settings
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Sheet reader settings
	cfg.Sheets.BaseURL = os.Getenv("SHEETS_API_URL")
	if t, err := strconv.Atoi(os.Getenv("SHEETS_TIMEOUT_SECONDS")); err == nil {
		cfg.Sheets.Timeout = time.Duration(t) * time.Second
	}
	if r, err := strconv.Atoi(os.Getenv("SHEETS_RETRY_ATTEMPTS")); err == nil {
		cfg.Sheets.RetryAttempts = r
	}

	// Notification settings
	if w, err := strconv.ParseFloat(os.Getenv("WARNING_THRESHOLD"), 64); err == nil {
		cfg.Notification.WarningThreshold = w
	}
	if d, err := strconv.ParseFloat(os.Getenv("DANGER_THRESHOLD"), 64); err == nil {
		cfg.Notification.DangerThreshold = d
	}
	if c, err := strconv.Atoi(os.Getenv("COOLDOWN_MINUTES")); err == nil {
		cfg.Notification.CooldownMinutes = c
	}

	// Workload settings
	if i, err := strconv.ParseFloat(os.Getenv("IMBALANCE_THRESHOLD"), 64); err == nil {
		cfg.Workload.ImbalanceThreshold = i
	}
	if p, err := strconv.Atoi(os.Getenv("TASK_PAGE_SIZE")); err == nil {
		cfg.Workload.TaskPageSize = p
	}

	// Kafka settings (optional; consumer disabled when broker is empty)
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	// Email settings
	cfg.Email.SMTPServer = os.Getenv("EMAIL_SMTP_SERVER")
	if p, err := strconv.Atoi(os.Getenv("EMAIL_SMTP_PORT")); err == nil {
		cfg.Email.SMTPPort = p
	}
	cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	cfg.Email.To = os.Getenv("EMAIL_TO")

	// Telegram settings
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if id, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64); err == nil {
		cfg.Telegram.ChatID = id
	}
	if r, err := strconv.Atoi(os.Getenv("TELEGRAM_RATE_PER_SECOND")); err == nil {
		cfg.Telegram.RatePerSecond = r
	}

	// Validate required settings
	missing := []string{}
	if cfg.Sheets.BaseURL == "" {
		missing = append(missing, "SHEETS_API_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Sheets.Timeout == 0 {
		cfg.Sheets.Timeout = 10 * time.Second
	}
	if cfg.Sheets.RetryAttempts == 0 {
		cfg.Sheets.RetryAttempts = 3
	}
	if cfg.Notification.WarningThreshold == 0 {
		cfg.Notification.WarningThreshold = 10.0
	}
	if cfg.Notification.DangerThreshold == 0 {
		cfg.Notification.DangerThreshold = 20.0
	}
	if cfg.Notification.CooldownMinutes == 0 {
		cfg.Notification.CooldownMinutes = 30
	}
	if cfg.Workload.ImbalanceThreshold == 0 {
		cfg.Workload.ImbalanceThreshold = 30.0
	}
	if cfg.Workload.TaskPageSize == 0 {
		cfg.Workload.TaskPageSize = 1000
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "sheet_updates"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "jira-dashboard"
	}
	if cfg.Telegram.RatePerSecond == 0 {
		cfg.Telegram.RatePerSecond = 1
	}

	return cfg, nil
}
