package application

import "context"

// Notifier delivers outbound notification emails. Implementations are
// best-effort: delivery happens off the critical path and failures must
// never surface to the operation that triggered them.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

// Send implements Notifier.
func (NopNotifier) Send(context.Context, string, string, string) {}
