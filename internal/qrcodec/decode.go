package qrcodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF
	_ "image/jpeg" // JPEG
	_ "image/png"  // PNG

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	_ "golang.org/x/image/bmp"  // BMP
	_ "golang.org/x/image/webp" // WEBP
)

var (
	// ErrNoSymbolFound — изображение корректно, но QR-код на нём не найден.
	// Ожидаемый исход, а не сбой.
	ErrNoSymbolFound = errors.New("QR-код на изображении не найден")
	// ErrInvalidImage — байты не удалось декодировать как изображение.
	ErrInvalidImage = errors.New("не удалось декодировать изображение")
)

// maxScanSide — предел стороны изображения для второго прохода.
const maxScanSide = 1024

// Decode растеризует изображение и ищет на нём QR-код.
// Если первый проход ничего не нашёл, повторяет поиск на уменьшенной
// контрастной полутоновой копии (фото с камеры).
func Decode(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if text, ok := scan(img); ok {
		return text, nil
	}
	if text, ok := scan(preprocess(img)); ok {
		return text, nil
	}
	return "", ErrNoSymbolFound
}

// scanHints — наборы подсказок сканера в порядке применения. PURE_BARCODE
// читает модули напрямую, без поиска finder-паттернов: детектор gozxing
// пропускает часть чистых изображений, которые отдаёт Encode.
var scanHints = []map[gozxing.DecodeHintType]interface{}{
	{gozxing.DecodeHintType_TRY_HARDER: true},
	{gozxing.DecodeHintType_PURE_BARCODE: true},
}

// scan запускает QR-сканер gozxing по пиксельному буферу.
func scan(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}

	for _, hints := range scanHints {
		result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
		if err == nil {
			return result.GetText(), true
		}
	}
	return "", false
}

func preprocess(img image.Image) image.Image {
	out := imaging.Fit(img, maxScanSide, maxScanSide, imaging.Lanczos)
	out = imaging.Grayscale(out)
	return imaging.AdjustContrast(out, 40)
}
