package model

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(c color.RGBA, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestPreprocessShape(t *testing.T) {
	data := preprocess(solidImage(color.RGBA{R: 10, G: 20, B: 30, A: 255}, 64, 48), 8)
	assert.Len(t, data, 3*8*8)
}

func TestPreprocessNormalization(t *testing.T) {
	// A white image maps every channel to (1 - mean) / std.
	data := preprocess(solidImage(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 16, 16), 4)

	plane := 4 * 4
	assert.InDelta(t, (1.0-0.485)/0.229, float64(data[0]), 1e-3)
	assert.InDelta(t, (1.0-0.456)/0.224, float64(data[plane]), 1e-3)
	assert.InDelta(t, (1.0-0.406)/0.225, float64(data[2*plane]), 1e-3)
}

func TestPreprocessBlackImage(t *testing.T) {
	// Black maps to -mean / std per channel.
	data := preprocess(solidImage(color.RGBA{A: 255}, 16, 16), 4)

	plane := 4 * 4
	assert.InDelta(t, -0.485/0.229, float64(data[0]), 1e-3)
	assert.InDelta(t, -0.456/0.224, float64(data[plane]), 1e-3)
	assert.InDelta(t, -0.406/0.225, float64(data[2*plane]), 1e-3)
}

func TestPreprocessFile(t *testing.T) {
	path := writePNG(t, solidImage(color.RGBA{R: 128, G: 128, B: 128, A: 255}, 32, 32))

	data, err := preprocessFile(path, 8)
	require.NoError(t, err)
	assert.Len(t, data, 3*8*8)
}

func TestPreprocessFileMissing(t *testing.T) {
	_, err := preprocessFile(filepath.Join(t.TempDir(), "nope.png"), 8)
	assert.Error(t, err)
}

func TestPreprocessFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	_, err := preprocessFile(path, 8)
	assert.Error(t, err)
}

func TestSoftmaxIsProbabilityDistribution(t *testing.T) {
	probs := softmax([]float32{1.5, -2.0, 0.3, 4.1})

	var sum float64
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSoftmaxPreservesOrdering(t *testing.T) {
	probs := softmax([]float32{-1.0, 3.0, 0.5})

	assert.Greater(t, probs[1], probs[2])
	assert.Greater(t, probs[2], probs[0])
}

func TestSoftmaxLargeLogits(t *testing.T) {
	// Big scores must not overflow to NaN/Inf.
	probs := softmax([]float32{1000, 999, 998})

	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, probs[0], probs[1])
}

func TestTop1(t *testing.T) {
	idx, p := top1([]float64{0.1, 0.7, 0.2})
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 0.7, p, 1e-12)
}

func TestTop1SingleClass(t *testing.T) {
	idx, p := top1([]float64{1.0})
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 1.0, p, 1e-12)
}
