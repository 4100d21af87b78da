package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (config <-> generator).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyRunId      = ContextKey("RunId")
	ContextKeySlotIndex  = ContextKey("SlotIndex")
	ContextKeyBlock      = ContextKey("Block")
	ContextKeySubPattern = ContextKey("SubPattern")
)

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func GetInt(ctx context.Context, key ContextKey) (int, bool) {
	v, ok := ctx.Value(key).(int)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}
