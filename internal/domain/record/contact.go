package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContactData - данные контакта
type ContactData struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func (c *ContactData) GetType() RecType {
	return RecTypeContact
}

func (c *ContactData) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

func (c *ContactData) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

func (c *ContactData) FromJSON(data []byte) error {
	return json.Unmarshal(data, c)
}
