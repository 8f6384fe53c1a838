package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
)

const dataURLPrefix = "data:image/png;base64,"

// ErrEmptyImage возвращается для nil изображения или изображения нулевого размера.
var ErrEmptyImage = errors.New("empty image")

// Encode сериализует изображение в PNG без потерь и кодирует в base64.
// Для одинаковых пикселей результат одинаковый.
func Encode(img image.Image) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode восстанавливает изображение из результата Encode.
func Decode(encoded string) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// DataURL оборачивает результат Encode в data URI для image_url.
func DataURL(encoded string) string {
	return dataURLPrefix + encoded
}

// WritePNG сохраняет изображение в файл (используется для вложений письма).
func WritePNG(path string, img image.Image) error {
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// IsEmpty сообщает, что пикселей нет.
func IsEmpty(img image.Image) bool {
	return img == nil || img.Bounds().Empty()
}

func encodePNG(img image.Image) ([]byte, error) {
	if IsEmpty(img) {
		return nil, ErrEmptyImage
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
