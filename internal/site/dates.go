package site

import (
	"fmt"
	"time"
)

// abbreviated month names, pt-BR
var monthsPtBR = [...]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// formatDate renders t as "dd MMM yyyy" in pt-BR, e.g. "15 mar 2021".
// Unpublished documents have no date and render as an empty string.
func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	utc := t.UTC()
	return fmt.Sprintf("%02d %s %d", utc.Day(), monthsPtBR[utc.Month()-1], utc.Year())
}
