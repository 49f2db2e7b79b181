package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"testing"
	"time"

	"github.com/sreedotee/verisure/internal/domain/model"
	"github.com/sreedotee/verisure/internal/qrcodec"
	"github.com/sreedotee/verisure/internal/repository"
)

const testToken = "product_P1_1700000000000_abc123xyz"

func newTestQRService(repo *mockProductRepo) *QRService {
	verification := newTestService(repo, &mockLedger{})
	return NewQRService(verification, 10, time.Minute, slog.Default())
}

func productRepoWithToken() *mockProductRepo {
	p := &model.Product{ProductID: "P1", Name: "Shoe", QRToken: testToken}
	return &mockProductRepo{
		getByProductIDFn: func(_ context.Context, productID string) (*model.Product, error) {
			if productID != "P1" {
				return nil, repository.ErrNotFound
			}
			return p, nil
		},
		getByQRTokenFn: func(_ context.Context, tok string) (*model.Product, error) {
			if tok != testToken {
				return nil, repository.ErrNotFound
			}
			return p, nil
		},
	}
}

// blankPNG — изображение без QR-кода.
func blankPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestQRService_RenderCaches(t *testing.T) {
	svc := newTestQRService(productRepoWithToken())

	first, err := svc.Render(context.Background(), "P1")
	if err != nil {
		t.Fatalf("Render() вернул ошибку: %v", err)
	}
	if first.Filename() != testToken+".png" {
		t.Errorf("Filename() = %q, ожидался %q", first.Filename(), testToken+".png")
	}

	decoded, err := qrcodec.Decode(first.PNG)
	if err != nil {
		t.Fatalf("Decode() вернул ошибку: %v", err)
	}
	if decoded != testToken {
		t.Errorf("QR содержит %q, ожидался %q", decoded, testToken)
	}

	second, err := svc.Render(context.Background(), "P1")
	if err != nil {
		t.Fatalf("повторный Render() вернул ошибку: %v", err)
	}
	if &second.PNG[0] != &first.PNG[0] {
		t.Error("повторный Render() не взят из кэша")
	}
	if svc.cache.Len() != 1 {
		t.Errorf("размер кэша = %d, ожидался 1", svc.cache.Len())
	}
}

func TestQRService_RenderNotFound(t *testing.T) {
	_, err := newTestQRService(productRepoWithToken()).Render(context.Background(), "P404")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ошибка = %v, ожидалась ErrNotFound", err)
	}
}

func TestQRService_ScanImage(t *testing.T) {
	svc := newTestQRService(productRepoWithToken())
	img, err := qrcodec.Encode(testToken)
	if err != nil {
		t.Fatalf("Encode() вернул ошибку: %v", err)
	}

	res, err := svc.Scan(context.Background(), "camera.jpg", img)
	if err != nil {
		t.Fatalf("Scan() вернул ошибку: %v", err)
	}
	if res.Candidate.Method != qrcodec.MethodImage {
		t.Errorf("Method = %q, ожидался image", res.Candidate.Method)
	}
	if res.Product.ProductID != "P1" || res.Source != SourceDirectory {
		t.Errorf("результат = {%s %s}, ожидался {P1 directory}", res.Product.ProductID, res.Source)
	}
}

// TestQRService_ScanFilenameFallback — сценарий D: на изображении нет
// QR-кода, токен восстанавливается из имени файла.
func TestQRService_ScanFilenameFallback(t *testing.T) {
	svc := newTestQRService(productRepoWithToken())

	res, err := svc.Scan(context.Background(), testToken+" (1).png", blankPNG(t))
	if err != nil {
		t.Fatalf("Scan() вернул ошибку: %v", err)
	}
	if res.Candidate.Method != qrcodec.MethodFilename {
		t.Errorf("Method = %q, ожидался filename", res.Candidate.Method)
	}
	if res.Candidate.Token != testToken {
		t.Errorf("Token = %q, ожидался %q", res.Candidate.Token, testToken)
	}
}

func TestQRService_ScanNoCandidate(t *testing.T) {
	svc := newTestQRService(productRepoWithToken())

	_, err := svc.Scan(context.Background(), ".png", blankPNG(t))
	if !errors.Is(err, qrcodec.ErrNoCandidate) {
		t.Errorf("ошибка = %v, ожидалась ErrNoCandidate", err)
	}
}

func TestQRService_ScanUnknownToken(t *testing.T) {
	svc := newTestQRService(productRepoWithToken())

	_, err := svc.Scan(context.Background(), "product_P9_1700000000000_zzzzzzzzz.png", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ошибка = %v, ожидалась ErrNotFound", err)
	}
}
