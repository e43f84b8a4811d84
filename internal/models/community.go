package models

import "time"

// Post представляет публикацию сообщества, хранимую на сервере
type Post struct {
	CreatedAt time.Time
	ID        string
	AuthorID  string
	Title     string
	Content   string
	Crop      string
	ImageURL  string
	Comments  []Comment
	Likes     int
}

// Comment представляет комментарий к публикации
type Comment struct {
	CreatedAt time.Time
	ID        string
	PostID    string
	AuthorID  string
	Text      string
}

// Task представляет задачу календаря полевых работ
type Task struct {
	CreatedAt   time.Time
	ID          string
	UserID      string
	Title       string
	Description string
	Crop        string
	DueDate     string
	Completed   bool
}

// Media представляет загруженную на сервер запись захвата
type Media struct {
	CapturedAt  time.Time
	CreatedAt   time.Time
	ID          string
	UserID      string
	MediaType   string
	PayloadKind string
	Payload     string
	Description string
	Checksum    string
	Metadata    string // JSON
}
