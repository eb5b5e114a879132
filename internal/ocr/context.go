package ocr

import "context"

type ctxKey string

const (
	ctxKeyContentHash ctxKey = "ocr.content_hash_hex"
)

// WithContentHash stores the hex-encoded SHA256 of the source file for OCR caching.
func WithContentHash(ctx context.Context, hex string) context.Context {
	return context.WithValue(ctx, ctxKeyContentHash, hex)
}

// ContentHash returns the hash stored by WithContentHash.
func ContentHash(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyContentHash).(string)
	return v, ok
}
