package record

import (
	"fmt"
)

type RecType string

const (
	RecTypeContact  RecType = "contact"
	RecTypeNote     RecType = "note"
	RecTypeBookmark RecType = "bookmark"
	RecTypeBinary   RecType = "binary"
)

// Validate проверяет, что тип входит в каталог известных типов.
func (t RecType) Validate() error {
	switch t {
	case RecTypeContact, RecTypeNote, RecTypeBookmark, RecTypeBinary:
		return nil
	}
	return fmt.Errorf("неверный тип записи: %s", t)
}

// String возвращает строковое представление типа.
func (t RecType) String() string {
	return string(t)
}

// DisplayName возвращает человекочитаемое название типа.
func (t RecType) DisplayName() string {
	switch t {
	case RecTypeContact:
		return "Контакт"
	case RecTypeNote:
		return "Заметка"
	case RecTypeBookmark:
		return "Закладка"
	case RecTypeBinary:
		return "Бинарные данные"
	default:
		return "Неизвестный тип"
	}
}
