package composer

import (
	"encoding/base64"
	"fmt"
	"image"
	"strings"
)

const pngDataURIPrefix = "data:image/png;base64,"

// EncodePNGDataURI wraps PNG bytes into a data URI.
func EncodePNGDataURI(png []byte) string {
	return pngDataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

// DecodePNGDataURI returns the raw PNG bytes behind a data URI, for
// handlers that serve the image directly.
func DecodePNGDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, pngDataURIPrefix) {
		return nil, fmt.Errorf("not a PNG data URI")
	}

	raw, err := base64.StdEncoding.DecodeString(uri[len(pngDataURIPrefix):])
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI: %w", err)
	}
	return raw, nil
}

// DecodeDataURI decodes a base64 image data URI back into an image.
// Used by the direct-print path, which needs pixels rather than markup.
func DecodeDataURI(uri string) (image.Image, error) {
	idx := strings.Index(uri, ",")
	if !strings.HasPrefix(uri, "data:image/") || idx < 0 {
		return nil, fmt.Errorf("not an image data URI")
	}

	raw, err := base64.StdEncoding.DecodeString(uri[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI: %w", err)
	}

	img, _, err := image.Decode(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}
