package qrcodec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/bmp"

	"github.com/sreedotee/verisure/internal/domain/token"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// blankPNG возвращает белое изображение без QR-кода.
func blankPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestEncode_Size(t *testing.T) {
	data, err := Encode("product_P1_169900_abcd")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("image.Decode: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, ожидался png", format)
	}
	if b := img.Bounds(); b.Dx() != ImageSize || b.Dy() != ImageSize {
		t.Errorf("размер = %dx%d, ожидался %dx%d", b.Dx(), b.Dy(), ImageSize, ImageSize)
	}

	// Двухцветное изображение: только чёрный и белый
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 7 {
		for x := b.Min.X; x < b.Max.X; x += 7 {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if g.Y != 0 && g.Y != 0xFF {
				t.Fatalf("пиксель (%d,%d) = %d, ожидался чёрный или белый", x, y, g.Y)
			}
		}
	}
}

func TestEncode_Errors(t *testing.T) {
	if _, err := Encode(""); !errors.Is(err, ErrEncode) {
		t.Errorf("Encode(\"\") = %v, ожидалась ErrEncode", err)
	}
	if _, err := Encode(strings.Repeat("x", 4000)); !errors.Is(err, ErrEncode) {
		t.Errorf("Encode(4000 символов) = %v, ожидалась ErrEncode", err)
	}
}

// TestRoundTrip — Decode(Encode(t)) == t для случайных токенов.
func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))

	for i := range 40 {
		n := 1 + r.IntN(64)
		var sb strings.Builder
		for range n {
			sb.WriteByte(alphabet[r.IntN(len(alphabet))])
		}
		want := sb.String()

		data, err := Encode(want)
		if err != nil {
			t.Fatalf("[%d] Encode(%q): %v", i, want, err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("[%d] Decode: %v", i, err)
		}
		if got != want {
			t.Fatalf("[%d] Decode(Encode(%q)) = %q", i, want, got)
		}
	}
}

func TestRoundTrip_ProductToken(t *testing.T) {
	tok := token.New("SKU-001", time.UnixMilli(1699000000000))
	data, err := Encode(tok)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != tok {
		t.Errorf("Decode = %q, ожидался %q", got, tok)
	}
}

// TestRoundTrip_ProductTokenShapes — токены формата token.New, включая
// изображения, на которых детектор finder-паттернов не срабатывает.
func TestRoundTrip_ProductTokenShapes(t *testing.T) {
	const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"
	r := rand.New(rand.NewPCG(2026, 3))

	tokens := []string{
		"product_P1_1700000000000_abc123xyz",
		"product_P1_169900_abcd",
	}
	for range 300 {
		id := make([]byte, 1+r.IntN(12))
		for i := range id {
			id[i] = alphabet[r.IntN(len(alphabet))]
		}
		suffix := make([]byte, 9)
		for i := range suffix {
			suffix[i] = base36[r.IntN(len(base36))]
		}
		ms := 1600000000000 + r.Int64N(200000000000)
		tokens = append(tokens, "product_"+string(id)+"_"+strconv.FormatInt(ms, 10)+"_"+string(suffix))
	}
	for range 20 {
		tokens = append(tokens, token.New("SKU-"+strconv.Itoa(r.IntN(100000)), time.Now()))
	}

	for _, want := range tokens {
		data, err := Encode(want)
		if err != nil {
			t.Fatalf("Encode(%q): %v", want, err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Errorf("Decode(Encode(%q)) вернул ошибку: %v", want, err)
			continue
		}
		if got != want {
			t.Errorf("Decode(Encode(%q)) = %q", want, got)
		}
	}
}

// TestDecode_OtherFormats перекодирует QR в JPEG и BMP.
func TestDecode_OtherFormats(t *testing.T) {
	const want = "product_P1_169900_abcd"
	data, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}

	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	var bm bytes.Buffer
	if err := bmp.Encode(&bm, img); err != nil {
		t.Fatalf("bmp.Encode: %v", err)
	}

	for name, raw := range map[string][]byte{"jpeg": jpg.Bytes(), "bmp": bm.Bytes()} {
		got, err := Decode(raw)
		if err != nil {
			t.Errorf("%s: Decode: %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("%s: Decode = %q, ожидался %q", name, got, want)
		}
	}
}

func TestDecode_NoSymbol(t *testing.T) {
	_, err := Decode(blankPNG(t))
	if !errors.Is(err, ErrNoSymbolFound) {
		t.Errorf("Decode(пустое изображение) = %v, ожидалась ErrNoSymbolFound", err)
	}
}

func TestDecode_InvalidImage(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	if !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Decode(мусор) = %v, ожидалась ErrInvalidImage", err)
	}
}

func TestExtract(t *testing.T) {
	qr, err := Encode("product_P1_169900_abcd")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	tests := []struct {
		name       string
		filename   string
		data       []byte
		wantToken  string
		wantMethod Method
		wantErr    error
	}{
		{
			name:       "QR на изображении важнее имени файла",
			filename:   "scan.png",
			data:       qr,
			wantToken:  "product_P1_169900_abcd",
			wantMethod: MethodImage,
		},
		{
			name:       "нет символа — имя файла",
			filename:   "order (2).PNG",
			data:       blankPNG(t),
			wantToken:  "order",
			wantMethod: MethodFilename,
		},
		{
			name:       "битые байты — имя файла с путём",
			filename:   `C:\Users\me\Downloads\product_P1_169900_abcd - Copy.png`,
			data:       []byte("garbage"),
			wantToken:  "product_P1_169900_abcd",
			wantMethod: MethodFilename,
		},
		{
			name:       "только имя файла",
			filename:   "product_P9_1_z.png",
			wantToken:  "product_P9_1_z",
			wantMethod: MethodFilename,
		},
		{
			name:     "ничего",
			filename: ".png",
			data:     blankPNG(t),
			wantErr:  ErrNoCandidate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.filename, tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Extract ошибка = %v, ожидалась %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if got.Token != tt.wantToken || got.Method != tt.wantMethod {
				t.Errorf("Extract = %+v, ожидался {%s %s}", got, tt.wantToken, tt.wantMethod)
			}
		})
	}
}
