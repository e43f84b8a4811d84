package models

import (
	"encoding/json"
	"time"
)

// CacheEntry последний успешно полученный снимок удаленной коллекции.
// На один ключ хранится не более одной записи; срока жизни нет.
type CacheEntry struct {
	Timestamp time.Time       `json:"timestamp"` // Timestamp время успешного получения данных
	Key       string          `json:"key"`       // Key логическое имя коллекции, например "community_posts"
	Data      json.RawMessage `json:"data"`      // Data содержимое, непрозрачное для кеша
}
