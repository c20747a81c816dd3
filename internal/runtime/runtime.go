// internal/runtime/runtime.go — shared wiring for the postbox binaries
package runtime

import (
	"context"
	"log/slog"
	"os"

	"github.com/joshsymonds/postbox/internal/email"

	// Register the mail providers with the client registry.
	_ "github.com/joshsymonds/postbox/internal/gmail"
	_ "github.com/joshsymonds/postbox/internal/remote"
)

// NewMailClient opens a client for the named provider. Provider packages are
// linked in above; selection is explicit by name, never by import order.
func NewMailClient(ctx context.Context, provider string) (email.Client, error) {
	return email.Open(ctx, provider)
}

func DefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
