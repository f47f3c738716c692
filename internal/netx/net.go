// Package netx moves attachment bytes in and out of their stored
// locations: data URLs and plain HTTP(S) URLs.
package netx

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

var ErrBadDataURL = errors.New("malformed data url")

// EncodeDataURL renders data as data:<mime>;base64,<payload>.
func EncodeDataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURL reports whether location holds inline content.
func IsDataURL(location string) bool {
	return strings.HasPrefix(location, "data:")
}

// DecodeDataURL returns the media type and payload of a data URL.
// Only the base64 form is supported, which is all EncodeDataURL produces.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: not base64", ErrBadDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return mediaType, data, nil
}

var httpClient = &http.Client{}

// Fetch resolves location to bytes: data URLs are decoded in place, anything
// else is downloaded with GET.
func Fetch(ctx context.Context, location string) (string, []byte, error) {
	if IsDataURL(location) {
		return DecodeDataURL(location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return mediaType, data, nil
}
