package qrcodec

import (
	"errors"
	"fmt"
	"strings"
)

// Method — способ, которым получен токен.
type Method string

const (
	// MethodImage — токен считан с пикселей изображения.
	MethodImage Method = "image"
	// MethodFilename — токен восстановлен из имени файла.
	MethodFilename Method = "filename"
)

// ErrNoCandidate — токен не удалось получить ни из изображения, ни из имени файла.
var ErrNoCandidate = errors.New("токен не найден ни на изображении, ни в имени файла")

// Candidate — нормализованный токен и способ его получения.
type Candidate struct {
	Token  string
	Method Method
}

// Extract извлекает токен из загруженного файла. Сначала декодируются
// пиксели, при неудаче токен берётся из имени файла (скачанный QR-код
// сохраняется как <token>.png). Оба пути сходятся в SanitizeCandidate.
func Extract(filename string, data []byte) (Candidate, error) {
	var decodeErr error
	if len(data) > 0 {
		text, err := Decode(data)
		if err == nil {
			if tok := SanitizeCandidate(text); tok != "" {
				return Candidate{Token: tok, Method: MethodImage}, nil
			}
		}
		decodeErr = err
	}

	if tok := SanitizeCandidate(baseName(filename)); tok != "" {
		return Candidate{Token: tok, Method: MethodFilename}, nil
	}

	if decodeErr != nil {
		return Candidate{}, fmt.Errorf("%w: %v", ErrNoCandidate, decodeErr)
	}
	return Candidate{}, ErrNoCandidate
}

// baseName отбрасывает путь, который некоторые браузеры передают в имени файла.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}
