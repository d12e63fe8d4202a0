// commands.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/LilVoxy/harga_pangan/routes"
	"github.com/LilVoxy/harga_pangan/scheduler"
	"github.com/LilVoxy/harga_pangan/websocket"
)

// serveCmd запускает HTTP API, ленту прогнозов и прогрев кэша
func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.close()

			if port != "" {
				a.config.Server.Port = port
			}

			// Лента прогнозов
			feed := websocket.NewManager(a.forecaster, a.metrics, a.logger)
			go feed.Run(ctx)

			// Прогрев кэша по расписанию
			warmer := scheduler.NewWarmer(a.data, a.forecaster, feed, a.metrics, a.logger, a.config.Scheduler.WarmInterval)
			go warmer.Start(ctx)

			// Создаем маршрутизатор
			router := mux.NewRouter()
			routes.SetupRoutes(router, routes.Dependencies{
				Repo:       a.repo,
				Data:       a.data,
				Forecaster: a.forecaster,
				Feed:       feed,
				Metrics:    a.metrics,
				Gatherer:   prometheus.DefaultGatherer,
				Server:     a.config.Server,
				Model:      a.config.Model,
			})

			// Настраиваем сервер
			server := &http.Server{
				Addr:         ":" + a.config.Server.Port,
				Handler:      router,
				ReadTimeout:  a.config.Server.ReadTimeout,
				WriteTimeout: a.config.Server.WriteTimeout,
				IdleTimeout:  60 * time.Second,
			}

			// Запускаем сервер в отдельной горутине
			serverErr := make(chan error, 1)
			go func() {
				a.logger.Info("✅ Сервер запущен на http://localhost%s", server.Addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			// Канал для сигналов завершения
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case <-stop:
				a.logger.Info("⚠️ Получен сигнал завершения, закрываем соединения...")
			case err := <-serverErr:
				a.logger.Error("❌ Ошибка запуска сервера: %v", err)
				return err
			}

			// Останавливаем ленту и планировщик, затем сервер
			cancel()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("❌ Ошибка остановки сервера: %v", err)
			}

			a.logger.Info("👋 Сервер остановлен")
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Порт HTTP (по умолчанию PORT или 5000)")
	return cmd
}

// predictCmd строит прогноз инфляции региона и печатает его в JSON
func predictCmd() *cobra.Command {
	var daerahID int

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Прогноз инфляции региона на следующий период",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.forecaster.Predict(ctx, daerahID)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().IntVarP(&daerahID, "daerah", "d", 1, "ID региона")
	return cmd
}

// normalCmd печатает ряд цен с "нормальной ценой" (тренд HP-фильтра)
func normalCmd() *cobra.Command {
	var daerahID, komoditasID, years int

	cmd := &cobra.Command{
		Use:   "normal",
		Short: "Нормальная цена товара в регионе",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()

			normal, err := a.data.NormalPrices(ctx, daerahID, komoditasID, years, a.config.Model.HPLambda)
			if err != nil {
				return err
			}
			return printJSON(cmd, normal)
		},
	}

	cmd.Flags().IntVarP(&daerahID, "daerah", "d", 1, "ID региона")
	cmd.Flags().IntVarP(&komoditasID, "komoditas", "k", 1, "ID товара")
	cmd.Flags().IntVarP(&years, "years", "y", 1, "Окно в годах от последней даты ряда")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
