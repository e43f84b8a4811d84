package cli

import (
	"os"
	"strings"
	"time"
)

// envPin returns the PIN from CROPAID_PIN
func envPin() string {
	return strings.TrimSpace(os.Getenv("CROPAID_PIN"))
}

// truncate сокращает строку для табличного вывода
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// offlineMark помечает элементы, созданные без сети
func offlineMark(offline bool) string {
	if offline {
		return " (pending sync)"
	}
	return ""
}

// metadataSize reads the "size" entry, which is an int before storage and
// a float64 after a JSON round trip
func metadataSize(meta map[string]any) int64 {
	switch v := meta["size"].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
