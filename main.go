// main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Глобальные флаги
	envFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "harga-pangan",
		Short: "API цен продовольственных товаров и прогноза инфляции",
		Long: `Сервис читает ряды цен товаров и уровня инфляции по регионам,
отдает их по HTTP и строит прогноз инфляции на следующий период.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Файл с переменными окружения")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Подробное логирование")

	// Подкоманды
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(normalCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Ошибка: %v\n", err)
		os.Exit(1)
	}
}
