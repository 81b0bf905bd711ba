package appforge

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

const (
	// MIMETypePNG and MIMETypeJPEG are the accepted image types.
	MIMETypePNG  = "image/png"
	MIMETypeJPEG = "image/jpeg"

	// DefaultMaxImageDim bounds the longer side of an image sent to the model.
	DefaultMaxImageDim = 1024

	// MaxImagePixels bounds width*height of an accepted image. Decoding
	// allocates by header dimensions, not by file size.
	MaxImagePixels = 40_000_000

	jpegQuality = 90
)

// Image is a mock-up image ready to be sent to the model.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// LoadImage sniffs data and wraps it as an Image. Only PNG and JPEG are accepted.
func LoadImage(name string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}

	mimeType := http.DetectContentType(data)
	switch mimeType {
	case MIMETypePNG, MIMETypeJPEG:
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedImage, name, mimeType)
	}

	img := &Image{Name: name, MIMEType: mimeType, Data: data}
	if _, _, err := img.checkedSize(); err != nil {
		return nil, err
	}
	return img, nil
}

// ReadImageFile loads an image from disk.
func ReadImageFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return LoadImage(filepath.Base(path), data)
}

// DataURL returns the image as a base64 data URL.
func (img *Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Size decodes the image header and returns its width and height.
func (img *Image) Size() (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// checkedSize reads the header and rejects images over MaxImagePixels.
func (img *Image) checkedSize() (int, int, error) {
	w, h, err := img.Size()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, img.Name, err)
	}
	if int64(w)*int64(h) > MaxImagePixels {
		return 0, 0, fmt.Errorf("%w: %s is %dx%d, over %d pixels", ErrUnsupportedImage, img.Name, w, h, MaxImagePixels)
	}
	return w, h, nil
}

// Downscale returns a copy of the image whose longer side is at most maxDim,
// re-encoded in the original format. JPEG EXIF orientation is applied first.
// Images already within bounds are returned unchanged; maxDim <= 0 disables
// scaling. Images over MaxImagePixels are rejected before decoding.
func (img *Image) Downscale(maxDim int) (*Image, error) {
	if maxDim <= 0 {
		return img, nil
	}

	width, height, err := img.checkedSize()
	if err != nil {
		return nil, err
	}

	orientation := 1
	if img.MIMEType == MIMETypeJPEG {
		orientation = exifOrientation(img.Data)
	}
	if width <= maxDim && height <= maxDim && orientation == 1 {
		return img, nil
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	src = applyOrientation(src, orientation)
	width, height = src.Bounds().Dx(), src.Bounds().Dy()

	newWidth, newHeight := fitWithin(width, height, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	switch img.MIMEType {
	case MIMETypeJPEG:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	default:
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return &Image{Name: img.Name, MIMEType: img.MIMEType, Data: buf.Bytes()}, nil
}

// fitWithin scales width x height to fit a maxDim square, keeping the aspect ratio.
func fitWithin(width, height, maxDim int) (int, int) {
	if width <= maxDim && height <= maxDim {
		return width, height
	}
	scale := float64(maxDim) / float64(width)
	if s := float64(maxDim) / float64(height); s < scale {
		scale = s
	}
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	return max(1, min(maxDim, w)), max(1, min(maxDim, h))
}

// exifOrientation returns the EXIF orientation tag of JPEG data, or 1.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// applyOrientation rotates or flips src so that it displays upright.
func applyOrientation(src image.Image, orientation int) image.Image {
	if orientation < 2 || orientation > 8 {
		return src
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2: // mirror
				dx, dy = w-1-x, y
			case 3: // 180
				dx, dy = w-1-x, h-1-y
			case 4: // flip
				dx, dy = x, h-1-y
			case 5: // transpose
				dx, dy = y, x
			case 6: // 90 cw
				dx, dy = h-1-y, x
			case 7: // transverse
				dx, dy = h-1-y, w-1-x
			case 8: // 90 ccw
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
