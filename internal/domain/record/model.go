package record

// Data - интерфейс для полезной нагрузки записи, полученной из очереди
type Data interface {
	GetType() RecType
	Validate() error
	ToJSON() ([]byte, error)
	FromJSON(data []byte) error
}
