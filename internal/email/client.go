// internal/email/client.go
package email

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// NoLimit asks ListInbox for every available message. Exhausting a large
// inbox can take a while; callers that only need a few messages should pass
// a positive cap instead.
const NoLimit = -1

// Client is the capability contract every mail provider implements.
type Client interface {
	// ListInbox returns inbox messages in provider order, newest first.
	// limit caps the result; NoLimit removes the cap. A call either returns
	// a fully populated slice up to the cap or an error, never a partial
	// result.
	ListInbox(ctx context.Context, limit int) ([]Email, error)
	// Get returns the full content of a single message.
	Get(ctx context.Context, id string) (Email, error)
	// MarkRead clears the unread state of a message.
	MarkRead(ctx context.Context, id string) error
	// Delete moves a message to the provider's trash.
	Delete(ctx context.Context, id string) error
	// Close releases the underlying connection. It is idempotent; operations
	// after Close fail with ErrConnection.
	Close() error
}

// Factory builds a connected client for one provider.
type Factory func(ctx context.Context) (Client, error)

var (
	providersMu sync.RWMutex
	providers   = map[string]Factory{}
)

// Register makes a provider factory available under name. Provider packages
// call it from init, database/sql-driver style. It panics when name is empty,
// the factory is nil, or the name is already taken: which implementation
// backs a name must never depend on import order.
func Register(name string, factory Factory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	if name == "" || factory == nil {
		panic("email: Register requires a name and a factory")
	}
	if _, dup := providers[name]; dup {
		panic("email: Register called twice for provider " + name)
	}
	providers[name] = factory
}

// Open builds a client for the named provider.
func Open(ctx context.Context, name string) (Client, error) {
	providersMu.RLock()
	factory, ok := providers[name]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("email: unknown provider %q (registered: %v)", name, Providers())
	}
	return factory(ctx)
}

// Providers lists the registered provider names, sorted.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
