package notify

import (
	"context"
	"log"
	"sync"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier is the transient user-facing notification channel (the toast
// area in the UI). Nothing sent here is fatal; it is display-only.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}

// LogNotifier writes notifications to the process log. Stands in wherever
// no UI channel is attached, e.g. the payment confirmation consumer.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, level Level, message string) {
	log.Printf("[%s] %s", level, message)
}

type collectorKey struct{}

// WithCollector attaches a fresh Collector to the context and returns it.
// Handlers add one per request so messages raised while serving it can ride
// back in the response body.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

func collectorFromContext(ctx context.Context) *Collector {
	if c, ok := ctx.Value(collectorKey{}).(*Collector); ok {
		return c
	}
	return nil
}

// Collector buffers the notifications raised while serving one request.
type Collector struct {
	mu       sync.Mutex
	messages []string
}

func (c *Collector) Notify(_ context.Context, _ Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

// Messages returns the collected messages in arrival order.
func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

// ContextNotifier routes notifications to the request's Collector when one
// is attached, and to Fallback otherwise.
type ContextNotifier struct {
	Fallback Notifier
}

func (n ContextNotifier) Notify(ctx context.Context, level Level, message string) {
	if c := collectorFromContext(ctx); c != nil {
		c.Notify(ctx, level, message)
		return
	}
	n.Fallback.Notify(ctx, level, message)
}
