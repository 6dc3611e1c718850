package utils

import (
	"context"

	"github.com/admissaoprv/secretaria-backend/appctx"
)

// Alias the shared context key type so call sites keep a single import.
type contextKey = appctx.ContextKey

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyTransactionId = appctx.ContextKeyTransactionId
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, cid string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, cid)
}

func GetTransactionIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyTransactionId)
}

func SetTransactionIdInContext(ctx context.Context, txId string) context.Context {
	return appctx.Set(ctx, ContextKeyTransactionId, txId)
}
