package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register gif decoding
	_ "image/jpeg" // register jpeg decoding
	_ "image/png"  // register png decoding
	"io"
	"net/http"

	_ "golang.org/x/image/webp" // register webp decoding
)

var (
	errTooLarge = errors.New("image exceeds max size")
	errTooSmall = errors.New("image below minimum dimensions")
)

// validate fetches and decodes one candidate, enforcing the byte and
// dimension bounds. The decoded image is kept so the winner can be
// re-encoded without a second fetch.
func (r *Resolver) validate(ctx context.Context, c Candidate) (*validated, error) {
	data, err := r.fetch(ctx, c.URL)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < r.cfg.MinWidth || height < r.cfg.MinHeight {
		return nil, fmt.Errorf("%w: %dx%d %s", errTooSmall, width, height, format)
	}

	return &validated{
		Candidate: c,
		img:       img,
		width:     width,
		height:    height,
		byteSize:  len(data),
	}, nil
}

// fetch downloads the candidate with the configured timeout and byte cap.
func (r *Resolver) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("image status %d", resp.StatusCode)
	}
	if resp.ContentLength > 0 && resp.ContentLength > r.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %d > %d", errTooLarge, resp.ContentLength, r.cfg.MaxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > r.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %d > %d", errTooLarge, len(data), r.cfg.MaxBytes)
	}

	return data, nil
}
