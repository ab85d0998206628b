package sync

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument - ошибка вызывающей стороны: некорректные
// аргументы, запрос к серверу при этом не выполняется.
var ErrInvalidArgument = errors.New("invalid argument")

var (
	ErrEmptyDeviceUUID = fmt.Errorf("%w: empty device uuid", ErrInvalidArgument)
	ErrEmptySessionID  = fmt.Errorf("%w: empty session id", ErrInvalidArgument)
	ErrEmptyQueueName  = fmt.Errorf("%w: empty queue name", ErrInvalidArgument)
)

// Сентинелы протокола в духе io.EOF: нормальные исходы
// "нечего делать", а не сбои.
var (
	// ErrNothingToSync возвращается из Start, когда серверу
	// нечего синхронизировать для устройства (ответ 204).
	ErrNothingToSync = errors.New("nothing to sync")

	// ErrQueueEmpty возвращается из Fetch, когда очередь
	// исчерпана (ответ 204).
	ErrQueueEmpty = errors.New("queue is empty")
)
