package service

import (
	"bytes"
	"fmt"
	"image/gif"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
)

// ProcessedFile is the storage-ready form of one uploaded file.
type ProcessedFile struct {
	Data        []byte
	ContentType string
	Ext         string
}

// ImageProcessor normalizes uploaded raster images for web delivery: resize
// to maxDimension on the long edge and transcode to JPEG. GIFs keep their
// format so animation survives, re-encoded but not resized. Anything that is
// not an image passes through untouched.
type ImageProcessor struct {
	maxDimension int
	quality      int
}

func NewImageProcessor(maxDimension, quality int) *ImageProcessor {
	return &ImageProcessor{
		maxDimension: maxDimension,
		quality:      quality,
	}
}

func (p *ImageProcessor) Process(data []byte, contentType string) (*ProcessedFile, error) {
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	switch {
	case contentType == "image/gif":
		return p.reencodeGIF(data)
	case strings.HasPrefix(contentType, "image/"):
		return p.transcode(data)
	default:
		ext := extensionFor(contentType)
		return &ProcessedFile{Data: data, ContentType: contentType, Ext: ext}, nil
	}
}

func (p *ImageProcessor) transcode(data []byte) (*ProcessedFile, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.maxDimension || bounds.Dy() > p.maxDimension {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &ProcessedFile{Data: buf.Bytes(), ContentType: "image/jpeg", Ext: ".jpg"}, nil
}

// reencodeGIF recompresses without resizing; frame geometry in animated GIFs
// does not survive per-frame resampling.
func (p *ImageProcessor) reencodeGIF(data []byte) (*ProcessedFile, error) {
	decoded, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode gif: %w", err)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, decoded); err != nil {
		return nil, fmt.Errorf("failed to encode gif: %w", err)
	}
	return &ProcessedFile{Data: buf.Bytes(), ContentType: "image/gif", Ext: ".gif"}, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
