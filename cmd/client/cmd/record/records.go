package record

import (
	"github.com/spf13/cobra"
)

var RecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Работа с локальными записями",
	Long:  `Просмотр записей, полученных из очередей синхронизации.`,
}
