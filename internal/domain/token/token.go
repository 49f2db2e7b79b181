// Пакет token — формат полезной нагрузки QR-кода продукта.
//
// Формат: product_<идентификатор>_<unix-ms>_<суффикс base36>.
// Токен уникален для каждой регистрации, но не является секретом.
package token

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

// Prefix — префикс всех токенов.
const Prefix = "product_"

// suffixLen — длина случайного суффикса.
const suffixLen = 9

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// New формирует токен для продукта на момент now.
func New(productID string, now time.Time) string {
	var b strings.Builder
	b.Grow(len(Prefix) + len(productID) + 15 + 1 + suffixLen)
	b.WriteString(Prefix)
	b.WriteString(productID)
	b.WriteByte('_')
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('_')
	b.WriteString(randomSuffix())
	return b.String()
}

// randomSuffix возвращает suffixLen случайных символов base36.
func randomSuffix() string {
	buf := make([]byte, suffixLen)
	_, _ = rand.Read(buf) // crypto/rand.Read не возвращает ошибку начиная с Go 1.24
	for i, v := range buf {
		buf[i] = base36[int(v)%len(base36)]
	}
	return string(buf)
}

// Parse извлекает идентификатор продукта из токена.
// Идентификатор может сам содержать '_', поэтому отбрасываются
// два последних сегмента (время и суффикс).
func Parse(tok string) (productID string, ok bool) {
	rest, found := strings.CutPrefix(tok, Prefix)
	if !found {
		return "", false
	}

	i := strings.LastIndexByte(rest, '_')
	if i < 0 || !isBase36(rest[i+1:]) {
		return "", false
	}
	rest = rest[:i]

	j := strings.LastIndexByte(rest, '_')
	if j < 0 || !isDigits(rest[j+1:]) {
		return "", false
	}

	productID = rest[:j]
	if productID == "" {
		return "", false
	}
	return productID, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isBase36(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune(base36, c) {
			return false
		}
	}
	return true
}
