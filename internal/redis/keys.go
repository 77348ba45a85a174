package redisx

import "fmt"

const ns = "eventix:v1"

func KeyEventSummary(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:summary", ns, eventID)
}

// KeyRateLimit is the limiter prefix for a scope; the limiter appends the
// per-caller suffix.
func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func KeyNotifyNonce(nonce string) string {
	return fmt.Sprintf("%s:notify:nonce:%s", ns, nonce)
}
