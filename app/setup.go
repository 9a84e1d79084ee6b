package app

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/biosecret/go-todo/auth"
	"github.com/biosecret/go-todo/config"
	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/handlers"
	"github.com/biosecret/go-todo/router"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// New tạo ứng dụng Fiber với middleware chung và toàn bộ route
func New(h *handlers.Handler, corsOrigins string, opts router.Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "go-todo",
		ErrorHandler: handlers.ErrorHandler,
		Immutable:    true, // chuỗi từ BodyParser còn được dùng sau request (event, SSE)
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Đính kèm middleware để xử lý lỗi và ghi log
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} [${ip}]:${port} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))

	// Thiết lập route cho ứng dụng
	router.SetupRoutes(app, h, opts)

	// Đính kèm Swagger
	config.AddSwaggerRoutes(app)

	return app
}

// SetupAndRunApp khởi động ứng dụng Fiber
func SetupAndRunApp() error {
	// Load biến môi trường từ file .env
	err := config.LoadENV()
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.ConfigFile())
	if err != nil {
		return err
	}
	log.SetLevel(parseLevel(cfg.LogLevel))

	issuer, err := auth.NewIssuer(cfg.JWTSecret)
	if err != nil {
		return err
	}

	// Khởi động PostgreSQL
	err = database.StartPostgreSQL(cfg.PostgreSQLURI)
	if err != nil {
		return err
	}

	// Đảm bảo kết nối với cơ sở dữ liệu được đóng sau khi ứng dụng kết thúc
	defer database.ClosePostgreSQL()

	db := database.GetDB()
	tokens := database.NewTokenRepository(db)
	hub := events.NewHub()
	publishers := events.Multi{hub}

	if cfg.MQTT.URL != "" {
		mqttPublisher, err := events.NewMQTTPublisher(cfg.MQTT.URL, cfg.MQTT.ClientID)
		if err != nil {
			return err
		}
		defer mqttPublisher.Close()
		publishers = append(publishers, mqttPublisher)
	}

	h := handlers.New(handlers.Config{
		Users:  database.NewUserRepository(db),
		Tokens: tokens,
		Todos:  database.NewTodoRepository(db),
		Issuer: issuer,
		Hasher: auth.NewHasher(cfg.BcryptCost),
		Hub:    hub,
		Events: publishers,
		DB:     db,
	})

	app := New(h, cfg.CORSOrigins, router.Options{
		Verifier:  issuer,
		Tokens:    tokens,
		StaticDir: cfg.StaticDir,
	})

	// Tắt server khi nhận SIGINT/SIGTERM
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-signals
		log.Infof("Received signal: %v", s)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("Error during shutdown: %v", err)
		}
	}()

	// Lắng nghe trên cổng chỉ định
	return app.Listen(":" + cfg.Port)
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
