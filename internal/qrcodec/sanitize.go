package qrcodec

import (
	"regexp"
	"strings"
)

var (
	// imageExtRe — хвостовое расширение файла изображения.
	imageExtRe = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|bmp|webp)$`)
	// duplicateSuffixRe — суффиксы копий файла: " (2)", " - Copy", "_Copy".
	duplicateSuffixRe = regexp.MustCompile(`(?i)(\s*\(\d+\)|\s*-\s*copy|_copy)$`)
)

// SanitizeCandidate нормализует кандидата в токен, полученного декодированием
// изображения или из имени файла: убирает расширение изображения, суффиксы
// копий и пробелы по краям.
//
// Правила применяются до неподвижной точки, поэтому
// SanitizeCandidate(SanitizeCandidate(s)) == SanitizeCandidate(s).
func SanitizeCandidate(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := imageExtRe.ReplaceAllString(s, "")
		next = duplicateSuffixRe.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == s {
			return s
		}
		s = next
	}
}
