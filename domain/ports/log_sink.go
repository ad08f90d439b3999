package ports

import "github.com/proxyscript/script-sdk/go/domain/entities"

// LogSink receives console messages forwarded by the host.
type LogSink interface {
	Publish(msg entities.LogMessageWire)
}
