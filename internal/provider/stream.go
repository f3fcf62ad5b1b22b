package provider

import "context"

// trySend delivers ev on ch unless ctx has been cancelled first,
// returning false when the caller should stop streaming. Shared by
// every SSE-parsing adapter so cancellation is observed at every
// suspension point, per spec.md §5.
func trySend(ctx context.Context, ch chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- ev:
		return true
	}
}
