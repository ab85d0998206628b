package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BinaryData - бинарные данные (файлы, изображения)
type BinaryData struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content,omitempty"` // base64 на проводе
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Checksum string `json:"checksum,omitempty"`
}

func (b *BinaryData) GetType() RecType {
	return RecTypeBinary
}

func (b *BinaryData) Validate() error {
	if strings.TrimSpace(b.Filename) == "" {
		return fmt.Errorf("filename is required")
	}
	if b.Size < 0 {
		return fmt.Errorf("size must be non-negative")
	}
	return nil
}

func (b *BinaryData) ToJSON() ([]byte, error) {
	return json.Marshal(b)
}

func (b *BinaryData) FromJSON(data []byte) error {
	return json.Unmarshal(data, b)
}
