package appforge

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

// pngHeader returns a PNG signature and IHDR chunk for a w x h grayscale
// image, followed by junk instead of pixel data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	buf.WriteString("not an IDAT chunk")
	return buf.Bytes()
}

func TestLoadImage(t *testing.T) {
	img, err := LoadImage("mock.png", encodePNG(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, MIMETypePNG, img.MIMEType)
	assert.Equal(t, "mock.png", img.Name)

	img, err = LoadImage("photo.jpg", encodeJPEG(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, MIMETypeJPEG, img.MIMEType)
}

func TestLoadImageRejects(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black}), nil))

	_, err := LoadImage("anim.gif", buf.Bytes())
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = LoadImage("notes.txt", []byte("just text"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = LoadImage("empty.png", nil)
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestImageDataURL(t *testing.T) {
	img := &Image{MIMEType: MIMETypeJPEG, Data: []byte("hi")}
	assert.Equal(t, "data:image/jpeg;base64,aGk=", img.DataURL())
}

func TestDownscaleLargePNG(t *testing.T) {
	img, err := LoadImage("wide.png", encodePNG(t, 200, 100))
	require.NoError(t, err)

	small, err := img.Downscale(50)
	require.NoError(t, err)
	assert.Equal(t, MIMETypePNG, small.MIMEType)
	assert.Equal(t, "wide.png", small.Name)

	w, h, err := small.Size()
	require.NoError(t, err)
	assert.Equal(t, 50, w)
	assert.Equal(t, 25, h)
}

func TestDownscaleKeepsJPEG(t *testing.T) {
	img, err := LoadImage("tall.jpg", encodeJPEG(t, 60, 300))
	require.NoError(t, err)

	small, err := img.Downscale(100)
	require.NoError(t, err)
	assert.Equal(t, MIMETypeJPEG, small.MIMEType)
	assert.True(t, strings.HasPrefix(small.DataURL(), "data:image/jpeg;base64,"))

	w, h, err := small.Size()
	require.NoError(t, err)
	assert.Equal(t, 20, w)
	assert.Equal(t, 100, h)
}

func TestDownscaleNoop(t *testing.T) {
	img, err := LoadImage("small.png", encodePNG(t, 30, 20))
	require.NoError(t, err)

	same, err := img.Downscale(100)
	require.NoError(t, err)
	assert.Same(t, img, same)

	same, err = img.Downscale(0)
	require.NoError(t, err)
	assert.Same(t, img, same)
}

func TestDownscaleCorruptImage(t *testing.T) {
	img := &Image{Name: "bad.png", MIMEType: MIMETypePNG, Data: []byte("\x89PNG\r\n\x1a\ngarbage")}
	_, err := img.Downscale(10)
	assert.Error(t, err)
}

func TestLoadImageRejectsHugeDimensions(t *testing.T) {
	_, err := LoadImage("bomb.png", pngHeader(12000, 12000))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.ErrorContains(t, err, "12000x12000")

	_, err = LoadImage("ok.png", pngHeader(6000, 6000))
	assert.NoError(t, err)
}

func TestDownscaleRejectsHugeDimensions(t *testing.T) {
	img := &Image{Name: "bomb.png", MIMEType: MIMETypePNG, Data: pngHeader(12000, 12000)}
	_, err := img.Downscale(1024)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestDownscaleFittingPNGSkipsDecode(t *testing.T) {
	// The pixel data is junk, so any full decode would fail.
	img := &Image{Name: "small.png", MIMEType: MIMETypePNG, Data: pngHeader(300, 200)}
	same, err := img.Downscale(1024)
	require.NoError(t, err)
	assert.Same(t, img, same)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{100, 50, 200, 100, 50},
		{2000, 1000, 1024, 1024, 512},
		{1000, 2000, 1024, 512, 1024},
		{5000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.max)
		assert.Equal(t, tt.wantW, w, "%dx%d in %d", tt.w, tt.h, tt.max)
		assert.Equal(t, tt.wantH, h, "%dx%d in %d", tt.w, tt.h, tt.max)
	}
}

func TestApplyOrientation(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	marker := color.RGBA{255, 0, 0, 255}
	src.Set(0, 0, marker)

	tests := []struct {
		orientation  int
		wantW, wantH int
		markX, markY int
	}{
		{1, 3, 2, 0, 0},
		{2, 3, 2, 2, 0},
		{3, 3, 2, 2, 1},
		{4, 3, 2, 0, 1},
		{5, 2, 3, 0, 0},
		{6, 2, 3, 1, 0},
		{7, 2, 3, 1, 2},
		{8, 2, 3, 0, 2},
	}

	for _, tt := range tests {
		out := applyOrientation(src, tt.orientation)
		b := out.Bounds()
		assert.Equal(t, tt.wantW, b.Dx(), "orientation %d width", tt.orientation)
		assert.Equal(t, tt.wantH, b.Dy(), "orientation %d height", tt.orientation)
		assert.Equal(t, marker, color.RGBAModel.Convert(out.At(tt.markX, tt.markY)), "orientation %d marker", tt.orientation)
	}
}

func TestExifOrientationWithoutExif(t *testing.T) {
	assert.Equal(t, 1, exifOrientation(encodeJPEG(t, 2, 2)))
	assert.Equal(t, 1, exifOrientation([]byte("not a jpeg")))
}
