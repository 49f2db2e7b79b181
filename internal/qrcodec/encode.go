// Пакет qrcodec — кодирование токена продукта в QR-код и извлечение
// токена из загруженного изображения или имени файла.
package qrcodec

import (
	"errors"
	"fmt"
	"image/color"

	qrcode "github.com/skip2/go-qrcode"
)

// ImageSize — сторона генерируемого PNG в пикселях.
const ImageSize = 256

// ErrEncode — токен невозможно представить в виде QR-кода
// (пустой или превышает ёмкость символа).
var ErrEncode = errors.New("невозможно закодировать токен в QR-код")

// Encode возвращает PNG размером ImageSize×ImageSize: чёрные модули на белом фоне.
func Encode(token string) ([]byte, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: пустой токен", ErrEncode)
	}

	q, err := qrcode.New(token, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	q.ForegroundColor = color.Black
	q.BackgroundColor = color.White

	png, err := q.PNG(ImageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return png, nil
}
