package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Restaurant/config"
	"Restaurant/events"
	"Restaurant/jwt"
	"Restaurant/models"
	"Restaurant/routers"
	"Restaurant/services"
	"Restaurant/verification"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "設定檔路徑")
	migrate := flag.Bool("migrate", true, "啟動時建立資料表")
	seed := flag.Bool("seed", false, "資料庫為空時寫入範例菜單")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "無法讀取設定檔: %v\n", err)
		os.Exit(1)
	}

	log, err := config.SetupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "無法設定日誌: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log, *migrate, *seed); err != nil {
		log.WithError(err).Fatal("伺服器異常結束")
	}
}

func run(cfg config.Config, log *logrus.Logger, migrate, seed bool) error {
	db, err := config.SetupDatabase(cfg, log)
	if err != nil {
		return fmt.Errorf("無法連接到資料庫: %w", err)
	}
	defer func() {
		if err := config.CloseDatabase(db); err != nil {
			log.WithError(err).Warn("關閉資料庫失敗")
		}
	}()

	if migrate {
		if err := models.AutoMigrate(db); err != nil {
			return fmt.Errorf("建立資料表失敗: %w", err)
		}
	}
	if seed {
		seeded, err := models.Seed(db)
		if err != nil {
			return fmt.Errorf("寫入範例菜單失敗: %w", err)
		}
		log.WithField("seeded", seeded).Info("範例菜單檢查完成")
	}

	rdb, err := config.SetupRedisConnection(cfg.Redis)
	if err != nil {
		return fmt.Errorf("無法連接到Redis: %w", err)
	}
	defer rdb.Close()

	//未設定RabbitMQ時不發送訂單事件
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return fmt.Errorf("無法連接到RabbitMQ: %w", err)
		}
		publisher = amqpPublisher
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("關閉RabbitMQ失敗")
		}
	}()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := routers.SetupRouters(routers.Dependencies{
		DB:          db,
		Orders:      services.NewOrderService(db, publisher, log),
		Customers:   services.NewCustomerService(db, verification.NewRedisSender(rdb, cfg.Redis.CodeTTL), log),
		Signer:      jwt.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		AdminSecret: cfg.Auth.AdminSecret,
		UploadsDir:  cfg.Server.UploadsDir,
		Log:         log,
	})
	if err != nil {
		return fmt.Errorf("無法建立路由: %w", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", httpServer.Addr).Info("HTTP伺服器啟動")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("收到關閉訊號")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("關閉伺服器失敗: %w", err)
	}
	return nil
}
