package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"syncpull/internal/app/client"
)

var (
	syncStatus bool
	queueName  string
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Запуск цикла синхронизации",
	Long: `Выполняет один полный цикл pull-синхронизации: открывает сессию,
выкачивает все объявленные сервером очереди и подтверждает
сохраненные записи.

Неподтвержденные с прошлых запусков ключи досылаются автоматически.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cmd.Context().Value("app").(*client.App)
		if app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		if syncStatus {
			return showSyncStatus(cmd.Context(), app)
		}

		// Выполняем синхронизацию
		return runSync(cmd.Context(), app)
	},
}

func runSync(ctx context.Context, app *client.App) error {
	fmt.Println("=== Синхронизация ===")

	if !app.IsInitialized() {
		return fmt.Errorf("требуется инициализация. Выполните: syncpull init")
	}

	fmt.Println("Проверка соединения с сервером...")
	if err := app.CheckConnection(ctx); err != nil {
		return fmt.Errorf("сервер недоступен: %v", err)
	}

	fmt.Println("Начало синхронизации...")

	stats, err := app.SyncRun(ctx)
	if err != nil {
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	fmt.Println()

	if stats.NothingToDo {
		color.Green("✅ Серверу нечего синхронизировать")
		return nil
	}

	color.Green("✅ Синхронизация завершена!")
	fmt.Printf("Сессия: %s\n", stats.SessionID)
	fmt.Printf("Очередей выбрано: %d\n", stats.Queues)
	fmt.Printf("Получено записей: %d\n", stats.Fetched)
	fmt.Printf("Подтверждено: %d\n", stats.Acked)
	fmt.Printf("Время выполнения: %v\n", stats.Duration.Round(time.Millisecond))

	if stats.Skipped > 0 {
		color.Yellow("⚠️  Пропущено записей неизвестных типов: %d", stats.Skipped)
		color.Yellow("   Обновите клиент, чтобы получать такие записи.")
	}

	if stats.Acked < stats.Stored {
		color.Yellow("⚠️  Часть подтверждений отклонена сервером")
		fmt.Println("   Они будут досланы при следующем запуске 'syncpull sync'")
	}

	return nil
}

func showSyncStatus(ctx context.Context, app *client.App) error {
	fmt.Println("=== Статус синхронизации ===")

	total, pending, err := app.Counts()
	if err != nil {
		return fmt.Errorf("ошибка чтения хранилища: %w", err)
	}

	fmt.Println("📊 Локальное хранилище:")
	fmt.Printf("  Всего записей: %d\n", total)
	fmt.Printf("  Неподтвержденных: %d\n", pending)

	keys, err := app.PendingAckKeys(queueName)
	if err != nil {
		return fmt.Errorf("ошибка чтения ключей: %w", err)
	}
	if len(keys) > 0 {
		fmt.Printf("  Ключи очереди %q, ожидающие подтверждения: %d\n", queueName, len(keys))
	}

	// Проверяем соединение с сервером
	fmt.Printf("\n🌐 Соединение с сервером: ")
	if err := app.CheckConnection(ctx); err != nil {
		color.Red("❌ Ошибка: %v", err)
	} else {
		color.Green("✅ OK")
	}

	// Проверяем инициализацию устройства
	fmt.Printf("🔑 Устройство: ")
	if app.IsInitialized() {
		id, _ := app.DeviceUUID()
		color.Green("✅ %s", id)
	} else {
		color.Red("❌ Требуется syncpull init")
	}

	return nil
}

func init() {
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать статус синхронизации")
	SyncCmd.Flags().StringVar(&queueName, "queue", "main", "очередь для отчета о неподтвержденных ключах")
}
