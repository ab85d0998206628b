// cmd/client/cmd/init.go
package cmd

import (
	"fmt"

	"syncpull/cmd/client/cmd/record"
	"syncpull/cmd/client/cmd/sync"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Инициализировать клиент syncpull",
	Long: `Команда init выполняет первоначальную настройку клиента:
	1. Создает директорию для локальных данных
	2. Генерирует идентификатор устройства
	3. Проверяет соединение с сервером

Идентификатор устройства передается серверу с каждым запросом
протокола - по нему сервер ведет курсор доставки для устройства.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Проверяем, не инициализирован ли уже клиент
		if app.IsInitialized() {
			id, _ := app.DeviceUUID()
			fmt.Println("Клиент уже инициализирован.")
			fmt.Printf("Идентификатор устройства: %s\n", id)
			return nil
		}

		fmt.Println("=== Инициализация syncpull ===")
		fmt.Println()

		fmt.Println("Создание идентификатора устройства...")
		id, err := app.InitDevice()
		if err != nil {
			return fmt.Errorf("ошибка создания идентификатора устройства: %w", err)
		}
		fmt.Printf("✓ Идентификатор устройства: %s\n", id)

		// Проверяем соединение с сервером
		fmt.Println("Проверка соединения с сервером...")
		if err := app.CheckConnection(cmd.Context()); err != nil {
			fmt.Printf("⚠️  Предупреждение: не удалось подключиться к серверу: %v\n", err)
			fmt.Println("Проверьте SERVER_ADDRESS перед запуском синхронизации.")
		} else {
			fmt.Println("✓ Соединение с сервером установлено")
		}

		fmt.Println()
		fmt.Println("✅ Инициализация успешно завершена!")
		fmt.Println()
		fmt.Println("Что дальше:")
		fmt.Println("1. Запустите синхронизацию: syncpull sync")
		fmt.Println("2. Посмотрите полученные записи: syncpull record list")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	// Добавляем команды работы с записями
	rootCmd.AddCommand(record.RecordCmd)
	record.RecordCmd.AddCommand(record.ListCmd)

	rootCmd.AddCommand(sync.SyncCmd)
}
