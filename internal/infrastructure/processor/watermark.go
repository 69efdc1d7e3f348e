package processor

import (
	"errors"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	fe "media-stamp/pkg/errors"
	"media-stamp/pkg/file"
)

// WatermarkOptions controls the tiled stamp. StrideFraction must stay below 1
// so neighbouring tiles overlap.
type WatermarkOptions struct {
	SizeFraction   float64 // of the source diagonal
	Opacity        float64 // alpha multiplier
	Angle          float64 // degrees, counter-clockwise
	StrideFraction float64 // of the watermark size
	JPEGQuality    int
}

func DefaultWatermarkOptions() WatermarkOptions {
	return WatermarkOptions{
		SizeFraction:   0.18,
		Opacity:        0.4,
		Angle:          45,
		StrideFraction: 0.9,
		JPEGQuality:    95,
	}
}

func (o WatermarkOptions) Validate() error {
	switch {
	case o.SizeFraction <= 0:
		return fe.ErrInvalidInput("watermark size fraction must be positive")
	case o.Opacity < 0 || o.Opacity > 1:
		return fe.ErrInvalidInput("watermark opacity must be within [0, 1]")
	case o.StrideFraction <= 0 || o.StrideFraction >= 1:
		return fe.ErrInvalidInput("watermark stride fraction must be within (0, 1)")
	case o.JPEGQuality < 1 || o.JPEGQuality > 100:
		return fe.ErrInvalidInput("jpeg quality must be within [1, 100]")
	}
	return nil
}

// TileGeometry is where copies of the watermark land on a width x height image.
type TileGeometry struct {
	Size     int
	Stride   int
	XOrigins []int
	YOrigins []int
}

// TileLayout computes the tile grid. Origins start one watermark size before
// the image and the last origin on each axis sits at or past the far edge.
func TileLayout(width, height int, opts WatermarkOptions) TileGeometry {
	diagonal := math.Hypot(float64(width), float64(height))
	size := int(math.Round(diagonal * opts.SizeFraction))
	if size < 1 {
		size = 1
	}
	stride := int(math.Round(float64(size) * opts.StrideFraction))
	if stride < 1 {
		stride = 1
	}

	return TileGeometry{
		Size:     size,
		Stride:   stride,
		XOrigins: axisOrigins(-size, width, stride),
		YOrigins: axisOrigins(-size, height, stride),
	}
}

func axisOrigins(start, extent, stride int) []int {
	var origins []int
	for o := start; ; o += stride {
		origins = append(origins, o)
		if o >= extent {
			break
		}
	}
	return origins
}

// Compositor stamps a tiled watermark onto images.
type Compositor struct {
	opts WatermarkOptions
	log  *zap.Logger
}

func NewCompositor(opts WatermarkOptions, log *zap.Logger) *Compositor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compositor{opts: opts, log: log}
}

// ApplyWatermark writes <stem>_watermarked<ext> next to sourcePath and returns
// its path. The output is always JPEG encoded.
func (c *Compositor) ApplyWatermark(sourcePath, watermarkPath string) (string, error) {
	if err := c.opts.Validate(); err != nil {
		return "", err
	}

	src, err := openImage(sourcePath)
	if err != nil {
		return "", err
	}
	mark, err := openImage(watermarkPath)
	if err != nil {
		return "", err
	}

	out := c.Composite(src, mark)

	outputPath := file.DerivedPath(sourcePath, file.SuffixWatermarked)
	err = file.WriteAtomic(outputPath, func(w io.Writer) error {
		return imaging.Encode(w, out, imaging.JPEG, imaging.JPEGQuality(c.opts.JPEGQuality))
	})
	if err != nil {
		return "", fe.ErrEncode(outputPath, err)
	}

	c.log.Debug("watermark applied",
		zap.String("path", sourcePath),
		zap.String("output", outputPath),
		zap.Int("width", out.Bounds().Dx()),
		zap.Int("height", out.Bounds().Dy()),
	)
	return outputPath, nil
}

// Composite returns src with the tiled watermark blended in and alpha
// flattened to opaque. src is not modified.
func (c *Compositor) Composite(src, mark image.Image) *image.NRGBA {
	base := imaging.Clone(src)
	b := base.Bounds()
	geo := TileLayout(b.Dx(), b.Dy(), c.opts)
	tile := PrepareTile(mark, geo.Size, c.opts)

	layer := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for _, y := range geo.YOrigins {
		for _, x := range geo.XOrigins {
			blendOver(layer, tile, image.Pt(x, y))
		}
	}

	blendOver(base, layer, image.Pt(0, 0))
	flatten(base)
	return base
}

// PrepareTile scales mark to size x size, attenuates its alpha and rotates it
// on an expanded transparent canvas.
func PrepareTile(mark image.Image, size int, opts WatermarkOptions) *image.NRGBA {
	scaled := imaging.Resize(mark, size, size, imaging.Lanczos)
	scaleAlpha(scaled, opts.Opacity)
	return imaging.Rotate(scaled, opts.Angle, color.Transparent)
}

func scaleAlpha(img *image.NRGBA, factor float64) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(float64(img.Pix[i]) * factor)
	}
}

// blendOver composites src onto dst at the given offset, in place, using the
// source-over operator on non-premultiplied pixels. Parts of src outside dst
// are clipped.
func blendOver(dst, src *image.NRGBA, at image.Point) {
	sb := src.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(sb.Size())}.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		sy := sb.Min.Y + y - at.Y
		for x := r.Min.X; x < r.Max.X; x++ {
			sx := sb.Min.X + x - at.X
			si := src.PixOffset(sx, sy)
			sa := float64(src.Pix[si+3]) / 255
			if sa == 0 {
				continue
			}

			di := dst.PixOffset(x, y)
			if sa == 1 {
				copy(dst.Pix[di:di+4], src.Pix[si:si+4])
				continue
			}

			da := float64(dst.Pix[di+3]) / 255
			outA := sa + da*(1-sa)
			for ch := 0; ch < 3; ch++ {
				sc := float64(src.Pix[si+ch])
				dc := float64(dst.Pix[di+ch])
				dst.Pix[di+ch] = clampByte((sc*sa + dc*da*(1-sa)) / outA)
			}
			dst.Pix[di+3] = clampByte(outA * 255)
		}
	}
}

func flatten(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func openImage(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fe.ErrNotFound(path, err)
		}
		return nil, fe.ErrDecode(path, err)
	}
	return img, nil
}
