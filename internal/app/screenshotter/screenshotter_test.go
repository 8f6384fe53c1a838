package screenshotter

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fake(displays []image.Rectangle, colors []color.RGBA, failIdx int) *Screenshotter {
	s := New(zap.NewNop().Sugar())
	s.numDisplays = func() int { return len(displays) }
	s.bounds = func(i int) image.Rectangle { return displays[i] }
	s.captureRect = func(r image.Rectangle) (*image.RGBA, error) {
		for i, d := range displays {
			if d == r {
				if i == failIdx {
					return nil, errors.New("capture failed")
				}
				img := image.NewRGBA(r)
				draw.Draw(img, r, &image.Uniform{C: colors[i]}, image.Point{}, draw.Src)
				return img, nil
			}
		}
		return nil, errors.New("unknown display")
	}
	return s
}

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func TestCapture_MergesDisplays(t *testing.T) {
	s := fake([]image.Rectangle{
		image.Rect(0, 0, 4, 3),
		image.Rect(4, 0, 8, 3),
	}, []color.RGBA{red, blue}, -1)

	img, err := s.Capture()
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 8, 3), img.Bounds())
	assert.Equal(t, red, img.At(1, 1))
	assert.Equal(t, blue, img.At(6, 1))
}

func TestCapture_NegativeOrigin(t *testing.T) {
	s := fake([]image.Rectangle{
		image.Rect(0, 0, 4, 4),
		image.Rect(-4, 0, 0, 4),
	}, []color.RGBA{red, blue}, -1)

	img, err := s.Capture()
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	assert.Equal(t, blue, img.At(0, 0))
	assert.Equal(t, red, img.At(7, 3))
}

func TestCapture_PartialFailure(t *testing.T) {
	s := fake([]image.Rectangle{
		image.Rect(0, 0, 2, 2),
		image.Rect(2, 0, 4, 2),
	}, []color.RGBA{red, blue}, 1)

	img, err := s.Capture()
	require.NoError(t, err)
	assert.Equal(t, red, img.At(0, 0))
}

func TestCapture_AllFail(t *testing.T) {
	s := fake([]image.Rectangle{image.Rect(0, 0, 2, 2)}, []color.RGBA{red}, 0)

	img, err := s.Capture()
	assert.Error(t, err)
	assert.Nil(t, img)
}

func TestCapture_NoDisplays(t *testing.T) {
	s := fake(nil, nil, -1)

	_, err := s.Capture()
	assert.ErrorIs(t, err, ErrNoDisplays)
}
