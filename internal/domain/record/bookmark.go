package record

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// BookmarkData - сохраненная ссылка
type BookmarkData struct {
	Title string   `json:"title"`
	URL   string   `json:"url"`
	Tags  []string `json:"tags,omitempty"`
}

func (b *BookmarkData) GetType() RecType {
	return RecTypeBookmark
}

func (b *BookmarkData) Validate() error {
	if strings.TrimSpace(b.URL) == "" {
		return fmt.Errorf("url is required")
	}
	if _, err := url.Parse(b.URL); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	return nil
}

func (b *BookmarkData) ToJSON() ([]byte, error) {
	return json.Marshal(b)
}

func (b *BookmarkData) FromJSON(data []byte) error {
	return json.Unmarshal(data, b)
}
