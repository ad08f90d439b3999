package hostfuncs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
	sdklog "github.com/proxyscript/script-sdk/go/log"
)

// PerformLog writes a script console message to the host logger and
// publishes it to sink. Either may be nil.
func PerformLog(ctx context.Context, logger *slog.Logger, sink ports.LogSink, msg entities.LogMessageWire) entities.LogAck {
	if logger != nil {
		level := sdklog.ParseLevel(msg.Level)
		if logger.Enabled(ctx, level) {
			attrs := make([]slog.Attr, 0, len(msg.Attrs)+1)
			attrs = append(attrs, slog.String("source", "script"))
			for _, a := range msg.Attrs {
				attrs = append(attrs, sdklog.FromLogAttrWire(a))
			}
			logger.LogAttrs(ctx, level, msg.Message, attrs...)
		}
	}
	if sink != nil {
		sink.Publish(msg)
	}
	return entities.LogAck{Accepted: true}
}

func consoleHandler(logger *slog.Logger, sink ports.LogSink) HostFunc[entities.LogMessageWire, entities.LogAck] {
	return func(ctx context.Context, msg entities.LogMessageWire) entities.LogAck {
		return PerformLog(ctx, logger, sink, msg)
	}
}

// ConsoleSink fans console messages out to subscribers. Slow subscribers
// lose messages rather than block scripts.
type ConsoleSink struct {
	subscribers map[int]chan entities.LogMessageWire
	mu          sync.Mutex
	nextID      int
	buffer      int
}

var _ ports.LogSink = (*ConsoleSink)(nil)

// NewConsoleSink creates a sink whose subscriber channels hold buffer messages.
func NewConsoleSink(buffer int) *ConsoleSink {
	if buffer <= 0 {
		buffer = 64
	}
	return &ConsoleSink{
		subscribers: make(map[int]chan entities.LogMessageWire),
		buffer:      buffer,
	}
}

// Publish delivers msg to every subscriber that has room for it.
func (s *ConsoleSink) Publish(msg entities.LogMessageWire) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribe returns a channel of future messages and a function that
// unsubscribes and closes the channel.
func (s *ConsoleSink) Subscribe() (<-chan entities.LogMessageWire, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan entities.LogMessageWire, s.buffer)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscribers.
func (s *ConsoleSink) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}
