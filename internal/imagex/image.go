// Package imagex decodes base64 data-URI images into raw bytes. It is a
// standalone helper with explicit inputs and outputs; callers pass the decoded
// bytes to whatever storage backend they use.
package imagex

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrNotDataURI indicates the input is not a base64 image data URI. Callers
// typically treat such input as an already-stored reference and keep it as is.
var ErrNotDataURI = errors.New("not an image data uri")

var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"webp": {},
}

// Image holds a decoded data-URI image.
type Image struct {
	Data      []byte
	Extension string
}

// DecodeDataURI parses a "data:image/<ext>;base64,<payload>" string and
// returns the decoded bytes with the normalized extension. Inputs that do not
// carry the data-URI prefix yield ErrNotDataURI; malformed payloads and
// unsupported image types yield descriptive errors.
func DecodeDataURI(input string) (*Image, error) {
	if !strings.HasPrefix(input, "data:image/") {
		return nil, ErrNotDataURI
	}

	rest := strings.TrimPrefix(input, "data:image/")
	ext, payload, found := strings.Cut(rest, ";base64,")
	if !found {
		return nil, fmt.Errorf("missing base64 marker in data uri")
	}

	ext = strings.ToLower(ext)
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, fmt.Errorf("unsupported image type %q", ext)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}

	return &Image{Data: data, Extension: ext}, nil
}
