// Пакет service — бизнес-логика verisure: проверка подлинности,
// регистрация и пометка продуктов, аналитика, QR-коды.
package service

import "errors"

// Ошибки сервисного слоя. Handlers сопоставляют их с HTTP-кодами через errors.Is.
var (
	// ErrValidation — некорректные входные данные.
	ErrValidation = errors.New("ошибка валидации")
	// ErrNotFound — продукт не найден в каталоге.
	ErrNotFound = errors.New("продукт не найден")
	// ErrConflict — продукт с таким идентификатором уже зарегистрирован.
	ErrConflict = errors.New("продукт уже зарегистрирован")
)
