// Package attachment loads user-selected images and converts them to and
// from data URLs.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrNotImage is returned when the content is not image/*.
	ErrNotImage = errors.New("attachment is not an image")
	// ErrTooLarge is returned when the file exceeds the size cap.
	ErrTooLarge = errors.New("attachment exceeds size limit")
	// ErrBadDataURL is returned by ParseDataURL for malformed input.
	ErrBadDataURL = errors.New("malformed data URL")
)

// DefaultMaxBytes is used when Load is given a non-positive limit.
const DefaultMaxBytes = 20 << 20

// Extensions are the file suffixes offered by the image picker.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".heic", ".heif"}

// Image is an attached picture.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Load reads path, sniffs its content type and rejects non-images.
func Load(path string, maxBytes int64) (*Image, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%s: %w (%s)", filepath.Base(path), ErrTooLarge, humanize.Bytes(uint64(maxBytes)))
	}

	return FromBytes(filepath.Base(path), data)
}

// FromBytes builds an Image from raw content.
func FromBytes(name string, data []byte) (*Image, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%s: %w (detected %s)", name, ErrNotImage, mt.String())
	}
	return &Image{
		Name:     name,
		MIMEType: baseType(mt.String()),
		Data:     data,
	}, nil
}

// baseType drops parameters such as "; charset=utf-8" (SVG sniffing yields them).
func baseType(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		return strings.TrimSpace(mime[:i])
	}
	return mime
}

// DataURL encodes the image as data:<mime>;base64,<payload>.
func (img *Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Label is a short human description for the message list.
func (img *Image) Label() string {
	if img == nil {
		return ""
	}
	return fmt.Sprintf("%s (%s)", img.Name, humanize.Bytes(uint64(len(img.Data))))
}

// ParseDataURL decodes a base64 data URL back into an Image with the given name.
func ParseDataURL(name, s string) (*Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrBadDataURL
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, fmt.Errorf("%w: only base64 payloads are supported", ErrBadDataURL)
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%w (declared %s)", ErrNotImage, mime)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return &Image{Name: name, MIMEType: mime, Data: data}, nil
}

// IsImagePath reports whether path has one of the picker extensions.
func IsImagePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
