package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyBatchID    contextKey = "batch_id"
	ContextKeyDocumentID contextKey = "document_id"
)

// WithBatchID adds a batch ID to the context
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, ContextKeyBatchID, batchID)
}

// BatchIDFromContext extracts the batch ID from context
func BatchIDFromContext(ctx context.Context) string {
	if batchID, ok := ctx.Value(ContextKeyBatchID).(string); ok {
		return batchID
	}
	return ""
}

// WithDocumentID adds a document ID to the context
func WithDocumentID(ctx context.Context, documentID string) context.Context {
	return context.WithValue(ctx, ContextKeyDocumentID, documentID)
}

// DocumentIDFromContext extracts the document ID from context
func DocumentIDFromContext(ctx context.Context) string {
	if documentID, ok := ctx.Value(ContextKeyDocumentID).(string); ok {
		return documentID
	}
	return ""
}

// WithTimeout creates a context with the specified timeout
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
