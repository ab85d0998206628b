package record

import (
	"fmt"
)

// Constructor создает полезную нагрузку записи из сырого JSON.
type Constructor func(data []byte) (Data, error)

// Таблица конструкторов заполняется один раз при старте процесса
// и после этого только читается, поэтому безопасна для
// конкурентного доступа без блокировок.
var constructors = map[RecType]Constructor{}

func init() {
	for typ, newData := range map[RecType]func() Data{
		RecTypeContact:  func() Data { return &ContactData{} },
		RecTypeNote:     func() Data { return &NoteData{} },
		RecTypeBookmark: func() Data { return &BookmarkData{} },
		RecTypeBinary:   func() Data { return &BinaryData{} },
	} {
		constructors[typ] = makeConstructor(typ, newData)
	}
}

func makeConstructor(typ RecType, newData func() Data) Constructor {
	return func(data []byte) (Data, error) {
		d := newData()
		if err := d.FromJSON(data); err != nil {
			return nil, fmt.Errorf("failed to parse data for type %s: %w", typ, err)
		}
		return d, nil
	}
}

// Resolve возвращает конструктор для указанного типа записи.
// Пустой или неизвестный тип дает (nil, false) - вызывающая сторона
// решает, пропустить такую запись или считать это ошибкой.
func Resolve(typeID string) (Constructor, bool) {
	if typeID == "" {
		return nil, false
	}
	c, ok := constructors[RecType(typeID)]
	return c, ok
}

// Parse создает и заполняет полезную нагрузку указанного типа.
func Parse(typ RecType, data []byte) (Data, error) {
	c, ok := Resolve(string(typ))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	return c(data)
}

// Catalog возвращает список всех зарегистрированных типов.
func Catalog() []RecType {
	types := make([]RecType, 0, len(constructors))
	for typ := range constructors {
		types = append(types, typ)
	}
	return types
}
