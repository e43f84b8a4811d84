package api

import "time"

// Post представляет публикацию в сообществе
type Post struct {
	CreatedAt time.Time `json:"created_at"`
	Comments  []Comment `json:"comments"`
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Crop      string    `json:"crop,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Likes     int       `json:"likes"`
	Offline   bool      `json:"offline,omitempty"` // Offline результат поставлен в очередь и еще не отправлен
}

// Comment представляет комментарий к публикации
type Comment struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
}

// CreatePostRequest представляет запрос на создание публикации
type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Crop     string `json:"crop,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// CommentRequest представляет запрос на добавление комментария
type CommentRequest struct {
	Text string `json:"text"`
}
