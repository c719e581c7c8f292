package reliosdk

import (
	"context"
	"log"
)

// ──────────────────────────────────────────────
// Generation boundary — the external text service as a function
// ──────────────────────────────────────────────

// DefaultFallbackReply is returned when the generation call fails.
const DefaultFallbackReply = "抱歉，我暂时无法回复。稍后再试一次。"

// ReplyFunc is the function signature for the external text-generation
// service: given a system prompt and the message history, return one reply.
// Implementations own their own timeouts; the engine only honors ctx.
type ReplyFunc func(ctx context.Context, systemPrompt string, messages []ChatMessage) (string, error)

// generateReply calls fn and substitutes fallback on any failure.
// ok reports whether the reply came from the service: a false return means
// the caller must not apply any growth or interaction recording for this
// turn.
func generateReply(ctx context.Context, fn ReplyFunc, systemPrompt string, messages []ChatMessage, fallback string) (reply string, ok bool) {
	if fn == nil {
		return fallback, false
	}
	if err := ctx.Err(); err != nil {
		return fallback, false
	}
	reply, err := fn(ctx, systemPrompt, messages)
	if err != nil {
		log.Printf("[Generate] reply generation failed | err=%v", err)
		return fallback, false
	}
	if reply == "" {
		return fallback, false
	}
	return reply, true
}
