package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NoteData - текстовая заметка
type NoteData struct {
	Title  string   `json:"title"`
	Text   string   `json:"text"`
	Format string   `json:"format,omitempty"` // plain, markdown
	Tags   []string `json:"tags,omitempty"`
}

func (n *NoteData) GetType() RecType {
	return RecTypeNote
}

func (n *NoteData) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if n.Format != "" && n.Format != "plain" && n.Format != "markdown" {
		return fmt.Errorf("unsupported format: %s", n.Format)
	}
	return nil
}

func (n *NoteData) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func (n *NoteData) FromJSON(data []byte) error {
	return json.Unmarshal(data, n)
}
