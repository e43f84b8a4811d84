package api

import "time"

// Task представляет задачу в календаре полевых работ
type Task struct {
	CreatedAt   time.Time `json:"created_at"`
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Crop        string    `json:"crop,omitempty"`
	DueDate     string    `json:"due_date,omitempty"` // дата в формате 2006-01-02
	Completed   bool      `json:"completed"`
	Offline     bool      `json:"offline,omitempty"` // Offline результат поставлен в очередь и еще не отправлен
}

// CreateTaskRequest представляет запрос на создание задачи
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Crop        string `json:"crop,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}
