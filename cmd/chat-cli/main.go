// Command chat-cli is a terminal version of the website chat widget.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/makebyjordan/chatbot-crm/internal/chatclient"
	"github.com/makebyjordan/chatbot-crm/internal/dto"
)

var (
	userColor      = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgGreen)
	pendingColor   = color.New(color.FgHiBlack, color.Italic)
	errorColor     = color.New(color.FgRed)
)

// printer writes every transcript line once, in order.
type printer struct {
	mu      sync.Mutex
	printed map[string]bool
}

func (p *printer) update(messages []chatclient.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range messages {
		if m.Pending || p.printed[m.ID] {
			continue
		}
		p.printed[m.ID] = true
		switch m.Role {
		case chatclient.RoleUser:
			userColor.Printf("you> ")
			fmt.Println(m.Text)
		case chatclient.RoleAssistant:
			assistantColor.Printf("bot> %s", m.Text)
			if m.Intent != "" {
				pendingColor.Printf("  [%s]", m.Intent)
			}
			fmt.Println()
		}
	}
}

func main() {
	baseURL := flag.String("url", envOr("CHAT_API_URL", "http://localhost:82/api/public/v1"), "public API base URL")
	token := flag.String("session", "", "resume an existing session token")
	lang := flag.String("lang", "", "preferred fallback language (es, en)")
	interval := flag.Duration("interval", chatclient.DefaultPollInterval, "history polling interval")
	verbose := flag.Bool("v", false, "log polling errors")
	flag.Parse()

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	metadata := dto.SessionMetadata{UserAgent: "chat-cli", Language: *lang}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := &printer{printed: make(map[string]bool)}
	chat := chatclient.NewChat(chatclient.New(*baseURL), chatclient.Config{
		SessionToken: *token,
		Metadata:     metadata,
		Interval:     *interval,
		OnUpdate:     out.update,
		Logger:       logger,
	})
	if err := chat.Start(ctx); err != nil {
		errorColor.Fprintf(os.Stderr, "could not start chat: %v\n", err)
		stop()
		os.Exit(1)
	}
	defer chat.Stop()

	pendingColor.Printf("session %s (ctrl+d to quit)\n", chat.SessionToken())

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			_, err := chat.Send(sendCtx, text)
			cancel()
			if err != nil {
				errorColor.Printf("message not sent: %v\n", err)
			}
		}
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
