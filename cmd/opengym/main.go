package main

import (
	"log"

	"opengym/internal/models/config"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

func main() {
	// Загружаем конфигурацию
	if err := config.Load(); err != nil {
		log.Fatalf("config: %v", err)
	}

	fx.New(
		fx.Supply(config.AppConfig),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		infrastructure,
		repositories,
		services,
		fx.Invoke(runHTTP, runBot, runJobs),
	).Run()
}
