package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
)

const (
	MaxFileSize   = 10 * 1024 * 1024 // 10MB
	MaxDimension  = 4096
	ThumbnailSize = 300
)

// ProcessedImage holds an emergency photo with its generated
// thumbnail, both ready to upload.
type ProcessedImage struct {
	Original    []byte
	Thumbnail   []byte
	ContentType string
	Width       int
	Height      int
}

// ValidateAndProcess checks size and type limits on an uploaded photo
// and generates a 300x300 center-cropped thumbnail from jpeg/png.
func ValidateAndProcess(file io.Reader, size int64) (*ProcessedImage, error) {
	if size > MaxFileSize {
		return nil, fmt.Errorf("file size %d exceeds maximum %d bytes", size, MaxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("file exceeds maximum %d bytes", MaxFileSize)
	}

	contentType := http.DetectContentType(data)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return nil, fmt.Errorf("invalid file type %q: only jpeg and png are allowed", contentType)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > MaxDimension || h > MaxDimension {
		return nil, fmt.Errorf("image dimensions %dx%d exceed maximum %d", w, h, MaxDimension)
	}

	thumb := imaging.Fill(img, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)

	var thumbBuf bytes.Buffer
	switch format {
	case "png":
		err = imaging.Encode(&thumbBuf, thumb, imaging.PNG)
	default:
		err = imaging.Encode(&thumbBuf, thumb, imaging.JPEG, imaging.JPEGQuality(85))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return &ProcessedImage{
		Original:    data,
		Thumbnail:   thumbBuf.Bytes(),
		ContentType: contentType,
		Width:       w,
		Height:      h,
	}, nil
}

// Extension maps the detected content type to an object key suffix.
func Extension(contentType string) string {
	if contentType == "image/png" {
		return ".png"
	}
	return ".jpg"
}
