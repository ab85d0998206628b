// Локальный сервер синхронизации для разработки клиента.
// Поднимает in-memory очереди с демонстрационными записями.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"syncpull/internal/app/devserver"
	"syncpull/internal/utils/logger"
)

func main() {
	godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("APP_ENV", "local")
	viper.SetDefault("DEVSERVER_PORT", "8080")
	viper.SetDefault("DEVSERVER_BATCH_SIZE", 2)

	log := logger.New(viper.GetString("APP_ENV"))

	srv := devserver.New(log, viper.GetInt("DEVSERVER_BATCH_SIZE"))
	seedDemo(srv)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", viper.GetString("DEVSERVER_PORT")),
		Handler: srv.Router(),
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("останавливаем dev-сервер...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info("dev-сервер запущен", "addr", server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Error("ошибка сервера", "error", err)
		os.Exit(1)
	}

	log.Info("dev-сервер остановлен")
}

func seedDemo(srv *devserver.Server) {
	srv.Seed("main",
		devserver.Item{Type: "contact", AckKey: "demo-1", Data: map[string]any{
			"name": "Bob", "email": "bob@example.com",
		}},
		devserver.Item{Type: "note", AckKey: "demo-2", Data: map[string]any{
			"title": "todo", "text": "buy milk",
		}},
		devserver.Item{Type: "bookmark", AckKey: "demo-3", Data: map[string]any{
			"title": "Go", "url": "https://go.dev",
		}},
	)
	srv.Seed("archive",
		devserver.Item{Type: "binary", AckKey: "demo-4", Data: map[string]any{
			"filename": "photo.jpg", "size": 1024,
		}},
	)
}
