package ai

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/gift"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

const (
	// MaxEdge bounds the longest side of the image sent for analysis.
	MaxEdge     = 1536
	JPEGQuality = 90
)

var ErrEmptyPayload = errors.New("image payload is empty")

// Prepare turns raw bytes into an inline payload. Images larger than
// MaxEdge are downscaled and re-encoded as JPEG; anything else is passed
// through with its sniffed media type.
func Prepare(data []byte, declared string) (Payload, error) {
	if len(data) == 0 {
		return Payload{}, ErrEmptyPayload
	}

	mediaType := DetectMediaType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		if !strings.HasPrefix(declared, "image/") {
			return Payload{}, fmt.Errorf("unsupported media type %q", mediaType)
		}
		mediaType = declared
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// formats without a Go decoder (heic, avif) go through untouched
		return Payload{Data: data, MIMEType: mediaType}, nil
	}

	bounds := src.Bounds()
	if bounds.Dx() <= MaxEdge && bounds.Dy() <= MaxEdge {
		return Payload{Data: data, MIMEType: mediaType}, nil
	}

	g := gift.New(gift.ResizeToFit(MaxEdge, MaxEdge, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(bounds))
	g.Draw(dst, src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return Payload{}, fmt.Errorf("failed to encode image: %w", err)
	}

	return Payload{Data: buf.Bytes(), MIMEType: "image/jpeg"}, nil
}

// DetectMediaType sniffs the content and returns the bare media type.
func DetectMediaType(data []byte) string {
	mediaType := mimetype.Detect(data).String()
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(mediaType)
}
