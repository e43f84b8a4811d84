package models

import "time"

// ActionType описывает вид отложенной мутирующей операции.
// Набор открыт для расширения: диспетчер регистрирует обработчики по типу.
type ActionType string

const (
	ActionCreatePost ActionType = "CREATE_POST"
	ActionCreateTask ActionType = "CREATE_TASK"
	ActionToggleTask ActionType = "TOGGLE_TASK"
	ActionDeleteTask ActionType = "DELETE_TASK"
)

// QueueStatus статус записи в очереди действий.
// Успешно обработанная запись удаляется, отдельного статуса "succeeded" нет.
type QueueStatus string

const (
	QueueStatusPending   QueueStatus = "pending"
	QueueStatusFailed    QueueStatus = "failed"
	QueueStatusAbandoned QueueStatus = "abandoned" // достигнут лимит попыток (если он задан)
)

// QueueEntry представляет одну отложенную операцию в очереди.
// ID монотонно растет: порядок создания совпадает с порядком обработки.
type QueueEntry struct {
	CreatedAt time.Time      `json:"created_at"` // CreatedAt время постановки в очередь
	Payload   map[string]any `json:"payload"`    // Payload данные конкретного действия
	Type      ActionType     `json:"type"`       // Type вид действия
	Status    QueueStatus    `json:"status"`     // Status pending/failed/abandoned
	ID        uint64         `json:"id"`         // ID назначается хранилищем
	Attempts  int            `json:"attempts"`   // Attempts количество попыток синхронизации
}

// RecordID returns the store-assigned identifier.
func (e *QueueEntry) RecordID() uint64 { return e.ID }

// SetRecordID is called by the store when the entry is first persisted.
func (e *QueueEntry) SetRecordID(id uint64) { e.ID = id }

// IndexKey returns the value of the secondary status index.
func (e *QueueEntry) IndexKey() string { return string(e.Status) }

// PayloadString returns a string field of the payload or "" when absent.
func (e *QueueEntry) PayloadString(key string) string {
	if e.Payload == nil {
		return ""
	}
	s, _ := e.Payload[key].(string)
	return s
}
