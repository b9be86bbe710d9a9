package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register webp decoding for ingest validation
)

// fitWithin downscales the image so both sides fit inside bound x bound,
// preserving aspect ratio. Images already inside the box are returned
// unchanged. Webp is validated by decoding but passed through as-is since no
// encoder is available.
func fitWithin(data []byte, bound int) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if (w <= bound && h <= bound) || format == "webp" {
		return data, nil
	}

	nw, nh := boundBoxSize(w, h, bound)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// boundBoxSize scales (w, h) down so the longer side equals bound. Both
// results stay at least 1.
func boundBoxSize(w, h, bound int) (int, int) {
	if w >= h {
		nh := h * bound / w
		if nh < 1 {
			nh = 1
		}
		return bound, nh
	}
	nw := w * bound / h
	if nw < 1 {
		nw = 1
	}
	return nw, bound
}
