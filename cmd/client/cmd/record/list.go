// cmd/client/cmd/record/list.go
package record

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"syncpull/internal/app/client"
	"syncpull/internal/domain/record"
)

var (
	listType   string
	listQueue  string
	listFormat string
	limit      int
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список записей",
	Long: `Просмотр записей, полученных из очередей, с фильтрацией
по типу и очереди.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cmd.Context().Value("app").(*client.App)
		if app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		filter := &client.RecordFilter{
			Type:  record.RecType(listType),
			Queue: listQueue,
			Limit: limit,
		}

		records, err := app.ListRecords(filter)
		if err != nil {
			return fmt.Errorf("ошибка получения списка записей: %w", err)
		}

		// Выводим результат
		switch listFormat {
		case "json":
			return printRecordsJSON(records)
		case "table":
			return printRecordsTable(records)
		default:
			return printRecordsSimple(records)
		}
	},
}

func printRecordsSimple(records []*client.StoredRecord) error {
	if len(records) == 0 {
		fmt.Println("Записи не найдены")
		return nil
	}

	fmt.Printf("Найдено записей: %d\n\n", len(records))

	for _, rec := range records {
		typ := record.RecType(rec.Type)
		fmt.Printf("• [%s] %s\n", typ.DisplayName(), rec.AckKey)
		fmt.Printf("  Очередь: %s, получена: %s\n",
			rec.Queue, rec.FetchedAt.Format("2006-01-02 15:04:05"))
		if rec.Acked {
			color.Green("  Подтверждена")
		} else {
			color.Yellow("  Ожидает подтверждения")
		}
	}

	return nil
}

func printRecordsJSON(records []*client.StoredRecord) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func printRecordsTable(records []*client.StoredRecord) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "КЛЮЧ\tТИП\tОЧЕРЕДЬ\tПОЛУЧЕНА\tПОДТВЕРЖДЕНА")

	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n",
			rec.AckKey, rec.Type, rec.Queue,
			rec.FetchedAt.Format("2006-01-02 15:04"), rec.Acked)
	}

	return w.Flush()
}

func init() {
	ListCmd.Flags().StringVar(&listType, "type", "", "фильтр по типу записи")
	ListCmd.Flags().StringVar(&listQueue, "queue", "", "фильтр по очереди")
	ListCmd.Flags().StringVar(&listFormat, "format", "simple", "формат вывода: simple, table, json")
	ListCmd.Flags().IntVar(&limit, "limit", 0, "ограничение числа записей")
}
