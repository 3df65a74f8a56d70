package imagegen

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// DecodeDataURL returns the bytes and MIME type of a base64 data URL.
func DecodeDataURL(value string) ([]byte, string, error) {
	if !strings.HasPrefix(value, "data:") {
		return nil, "", errors.New("not a data url")
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(value, "data:"), ",")
	if !ok {
		return nil, "", errors.New("data url has no payload")
	}
	mime, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return nil, "", fmt.Errorf("unsupported data url encoding %q", encoding)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data url: %w", err)
	}
	return data, mime, nil
}
