package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"pocketguide/internal/logger"
	"pocketguide/internal/media"
	"pocketguide/internal/repository"
	"pocketguide/internal/service"
	"pocketguide/internal/telegram"
	"pocketguide/internal/tour"
)

func main() {
	_ = godotenv.Load()

	zlog, err := logger.New(os.Getenv("LOG_DEBUG") == "1")
	if err != nil {
		log.Fatalf("Не удалось создать логгер: %v", err)
	}
	defer zlog.Sync()

	// Подключение к базе данных
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "db"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort,
		os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("DB_NAME"),
	)
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		zlog.Fatal("подключение к базе не удалось", zap.Error(err))
	}

	mediaDir := os.Getenv("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "media"
	}
	mediaStore, err := media.NewStore(mediaDir, zlog)
	if err != nil {
		zlog.Fatal("не удалось открыть медиахранилище", zap.Error(err))
	}

	// Инициализация репозиториев и сервисов
	catalogRepo := repository.NewCatalogRepository(db)
	catalog := service.NewCatalogService(catalogRepo, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Хранилище сессий; вытеснение по простою включается переменной SESSION_TTL.
	var sessions *tour.Store
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			zlog.Fatal("некорректное значение SESSION_TTL", zap.String("value", raw), zap.Error(err))
		}
		sessions = tour.NewStoreWithTTL(ttl)
		sessions.StartEvictor(ctx, ttl)
	} else {
		sessions = tour.NewStore()
	}

	engine := tour.NewEngine(sessions, catalog, mediaStore, zlog)

	// Инициализация Telegram Bot API
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		zlog.Fatal("не указан токен бота (BOT_TOKEN)")
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		zlog.Fatal("ошибка инициализации бота", zap.Error(err))
	}
	zlog.Info("бот запущен", zap.String("username", bot.Self.UserName))

	telegram.NewAdapter(bot, engine, zlog).Run(ctx)
	zlog.Info("бот остановлен")
}
