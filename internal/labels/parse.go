// Package labels разбирает строку меток, введенную пользователем.
package labels

import (
	"strings"

	"github.com/iudanet/accountkeeper/internal/models"
)

// Separator разделитель меток во входной строке
const Separator = ";"

// Parse разбирает строку вида "work; personal ;;vpn" в список меток.
// Пустые и состоящие из пробелов части отбрасываются, порядок и дубликаты сохраняются.
// Всегда возвращает не-nil срез.
func Parse(raw string) []models.Label {
	labels := []models.Label{}
	if strings.TrimSpace(raw) == "" {
		return labels
	}

	for _, piece := range strings.Split(raw, Separator) {
		text := strings.TrimSpace(piece)
		if text == "" {
			continue
		}
		labels = append(labels, models.Label{Text: text})
	}

	return labels
}

// Join собирает метки обратно в сырую строку через Separator без пробелов.
// Результат не длиннее исходной строки, из которой метки были получены.
func Join(labels []models.Label) string {
	texts := make([]string, 0, len(labels))
	for _, l := range labels {
		texts = append(texts, l.Text)
	}
	return strings.Join(texts, Separator)
}
