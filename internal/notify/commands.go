package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/integration-list-exporter/internal/entry"
	"github.com/nerrad567/integration-list-exporter/internal/infrastructure/mqtt"
)

// Subscriber subscribes to MQTT topics. *mqtt.Client satisfies it.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Caller invokes registered commands. *entry.Services satisfies it.
type Caller interface {
	Has(domain, name string) bool
	Call(ctx context.Context, domain, name string) error
}

// CommandListener turns messages on integrationexporter/command/<name> into
// calls of the command <name> in the exporter's domain.
//
// Commands run on their own goroutine so a slow export never stalls the MQTT
// client's delivery loop. Wait blocks until every started command finished.
type CommandListener struct {
	sub    Subscriber
	caller Caller
	qos    byte
	logger Logger
	wg     sync.WaitGroup
}

// NewCommandListener creates a listener. Call Listen to subscribe.
func NewCommandListener(sub Subscriber, caller Caller, qos byte, logger Logger) *CommandListener {
	return &CommandListener{sub: sub, caller: caller, qos: qos, logger: orNoop(logger)}
}

// Listen subscribes to every command topic. Commands run with ctx, so
// cancelling it aborts in-flight exports.
func (l *CommandListener) Listen(ctx context.Context) error {
	if err := l.sub.Subscribe(mqtt.Topics{}.AllCommands(), l.qos, l.handler(ctx)); err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}
	return nil
}

// Wait blocks until all commands started so far have returned.
func (l *CommandListener) Wait() {
	l.wg.Wait()
}

func (l *CommandListener) handler(ctx context.Context) mqtt.MessageHandler {
	return func(topic string, _ []byte) error {
		name := mqtt.CommandName(topic)
		if name == "" || !l.caller.Has(entry.Domain, name) {
			return fmt.Errorf("%w: %s", entry.ErrServiceNotFound, topic)
		}

		l.logger.Info("command received", "command", name, "source", "mqtt")
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			if err := l.caller.Call(ctx, entry.Domain, name); err != nil {
				l.logger.Warn("command failed", "command", name, "error", err)
			}
		}()
		return nil
	}
}
