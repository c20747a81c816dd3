package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joshsymonds/postbox/internal/runtime"
)

const previewLength = 100

type fetchConfig struct {
	provider string
	limit    int
}

func main() {
	cfg := parseFetchFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("postbox-fetch failed", "error", err)
		os.Exit(1)
	}
}

func parseFetchFlags() fetchConfig {
	provider := flag.String("provider", "gmail", "mail provider to use")
	limit := flag.Int("limit", 5, "number of messages to fetch (-1 for all)")
	flag.Parse()

	return fetchConfig{
		provider: *provider,
		limit:    *limit,
	}
}

func run(cfg fetchConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := runtime.NewMailClient(ctx, cfg.provider)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}
	defer client.Close()

	messages, err := client.ListInbox(ctx, cfg.limit)
	if err != nil {
		return fmt.Errorf("list inbox: %w", err)
	}
	if len(messages) == 0 {
		fmt.Println("Inbox is empty")
		return nil
	}

	fmt.Printf("Found %d messages\n", len(messages))
	for i, msg := range messages {
		fmt.Printf("\nMessage %d:\n", i+1)
		fmt.Printf("  From: %s\n", msg.Sender)
		fmt.Printf("  Subject: %s\n", msg.Subject)
		fmt.Printf("  Date: %s\n", msg.DateSent)
		fmt.Printf("  Preview: %s\n", preview(msg.Body))
	}
	return nil
}

func preview(body string) string {
	body = strings.ReplaceAll(body, "\n", " ")
	if body == "" {
		return "(no body)"
	}
	// Truncate on rune boundaries so multi-byte characters stay intact.
	runes := []rune(body)
	if len(runes) > previewLength {
		return string(runes[:previewLength]) + "..."
	}
	return body
}
