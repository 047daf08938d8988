package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL драйвер
	"go.uber.org/zap"

	"pocketguide/internal/handler"
	"pocketguide/internal/logger"
	"pocketguide/internal/media"
	"pocketguide/internal/repository"
	"pocketguide/internal/service"
)

func main() {
	_ = godotenv.Load()

	zlog, err := logger.New(os.Getenv("LOG_DEBUG") == "1")
	if err != nil {
		log.Fatalf("Не удалось создать логгер: %v", err)
	}
	defer zlog.Sync()

	// Читаем параметры подключения к БД из переменных окружения
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
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
		zlog.Fatal("не удалось подключиться к базе данных", zap.Error(err))
	}

	// Выполняем миграции
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		zlog.Fatal("не удалось подготовить миграции", zap.Error(err))
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		zlog.Fatal("не удалось открыть миграции", zap.Error(err))
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		zlog.Fatal("миграции завершились ошибкой", zap.Error(err))
	}

	mediaDir := os.Getenv("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "media"
	}
	mediaStore, err := media.NewStore(mediaDir, zlog)
	if err != nil {
		zlog.Fatal("не удалось открыть медиахранилище", zap.Error(err))
	}

	// Инициализируем репозитории и сервисы
	catalogRepo := repository.NewCatalogRepository(db)
	catalog := service.NewCatalogService(catalogRepo, zlog)

	adminUser := os.Getenv("ADMIN_USERNAME")
	if adminUser == "" {
		adminUser = "admin"
	}
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminPass == "" {
		adminPass = "admin123"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		zlog.Fatal("не указан секрет токенов (JWT_SECRET)")
	}
	auth := handler.NewAuth(adminUser, adminPass, []byte(secret), zlog)

	// Создаем Handler и регистрируем маршруты
	h := handler.NewHandler(catalog, mediaStore, zlog)
	router := gin.Default()
	router.POST("/api/login", auth.Login)
	api := router.Group("/api", auth.Middleware())
	{
		api.GET("/cities", h.ListCities)
		api.POST("/cities", h.CreateCity)
		api.GET("/cities/:id", h.GetCity)
		api.PUT("/cities/:id", h.UpdateCity)
		api.DELETE("/cities/:id", h.DeleteCity)

		api.GET("/excursions", h.ListExcursions)
		api.POST("/excursions", h.CreateExcursion)
		api.GET("/excursions/:id", h.GetExcursion)
		api.PUT("/excursions/:id", h.UpdateExcursion)
		api.DELETE("/excursions/:id", h.DeleteExcursion)

		api.GET("/points", h.ListPoints)
		api.POST("/points", h.CreatePoint)
		api.GET("/points/:id", h.GetPoint)
		api.PUT("/points/:id", h.UpdatePoint)
		api.DELETE("/points/:id", h.DeletePoint)

		api.POST("/media/:category", h.UploadMedia)
		api.DELETE("/media", h.DeleteMedia)
	}
	// Загруженные файлы отдаются статикой по тем же путям, что хранятся в базе.
	router.Static("/media", mediaStore.Dir())

	// Health-check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Запускаем HTTP-сервер
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		zlog.Fatal("ошибка запуска сервера", zap.Error(err))
	}
}
