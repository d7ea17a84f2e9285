package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/projetoswmfa/football-api/internal/pkg/models"
)

// Min interval between any two Telegram messages to the same chat to avoid 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

// queuedMessage represents a message queued for sending
type queuedMessage struct {
	signals []models.Signal
	meta    CycleMeta
}

// TelegramNotifier delivers ranked signals to a Telegram chat. Messages go
// through a buffered queue serviced by a single background sender so that
// engine cycles never block on the Telegram API.
type TelegramNotifier struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	mu       sync.Mutex
	lastSend time.Time

	queue     chan queuedMessage
	queueDone chan struct{}
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

var _ Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot.Debug = false

	// Test bot connection
	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	notifier := &TelegramNotifier{
		bot:       bot,
		chatID:    chatID,
		queue:     make(chan queuedMessage, 100),
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}

	notifier.wg.Add(1)
	go notifier.messageSender()

	slog.Info("Telegram notifier initialized", "chat_id", chatID)

	return notifier, nil
}

// NotifySignals queues one message per cycle with all ranked signals (non-blocking).
// An empty signal list is a no-op.
func (n *TelegramNotifier) NotifySignals(ctx context.Context, signals []models.Signal, meta CycleMeta) error {
	if n == nil || n.bot == nil {
		return fmt.Errorf("telegram notifier not initialized")
	}
	if len(signals) == 0 {
		return nil
	}

	// Copy to protect against caller mutation after queueing
	signalsCopy := make([]models.Signal, len(signals))
	copy(signalsCopy, signals)

	select {
	case <-n.ctx.Done():
		return fmt.Errorf("notifier stopped")
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- queuedMessage{signals: signalsCopy, meta: meta}:
		return nil
	default:
		slog.Warn("Telegram message queue is full, dropping message", "cycle_id", meta.CycleID)
		return fmt.Errorf("message queue is full")
	}
}

// QueueLen returns current number of messages in the send queue (for logging).
func (n *TelegramNotifier) QueueLen() int {
	if n == nil || n.queue == nil {
		return 0
	}
	return len(n.queue)
}

// messageSender runs in background and sends queued messages with proper intervals
func (n *TelegramNotifier) messageSender() {
	defer n.wg.Done()

	for {
		select {
		case <-n.ctx.Done():
			// Drain remaining messages before exit
			for {
				select {
				case msg := <-n.queue:
					n.sendQueuedMessage(msg)
				default:
					close(n.queueDone)
					return
				}
			}
		case msg := <-n.queue:
			n.sendQueuedMessage(msg)
		}
	}
}

// sendQueuedMessage sends a queued message with proper rate limiting
func (n *TelegramNotifier) sendQueuedMessage(msg queuedMessage) {
	messageText := n.formatSignalsAlert(msg.signals, msg.meta)

	tgMsg := tgbotapi.NewMessage(n.chatID, messageText)
	tgMsg.ParseMode = tgbotapi.ModeMarkdown

	// Wait for proper interval
	n.mu.Lock()
	elapsed := time.Since(n.lastSend)
	if elapsed < telegramSendInterval {
		waitTime := telegramSendInterval - elapsed
		n.mu.Unlock()
		select {
		case <-n.ctx.Done():
			slog.Warn("Telegram send: cancelled during wait", "cycle_id", msg.meta.CycleID)
			return
		case <-time.After(waitTime):
		}
		n.mu.Lock()
	}

	n.lastSend = time.Now()
	_, err := n.bot.Send(tgMsg)
	n.mu.Unlock()

	if err != nil {
		slog.Error("Telegram send: failed",
			"error", err,
			"cycle_id", msg.meta.CycleID,
			"signals", len(msg.signals))
	} else {
		slog.Info("Telegram send: success",
			"cycle_id", msg.meta.CycleID,
			"signals", len(msg.signals),
			"queue_length", len(n.queue))
	}
}

// Stop stops the notifier and waits for all queued messages to be sent
func (n *TelegramNotifier) Stop() {
	if n == nil {
		return
	}
	n.cancel()
	<-n.queueDone
	n.wg.Wait()
}

// formatSignalsAlert formats the cycle's ranked signals as a single Telegram message.
func (n *TelegramNotifier) formatSignalsAlert(signals []models.Signal, meta CycleMeta) string {
	var builder strings.Builder

	builder.WriteString("🎯 *Live Match Signals*\n\n")
	for i, sig := range signals {
		builder.WriteString(fmt.Sprintf("%d. %s *%s* — confidence %d/10\n",
			i+1, signalEmoji(sig.Type), formatSignalType(sig.Type), sig.Confidence))
		builder.WriteString(fmt.Sprintf("   %s\n", escapeMarkdown(sig.MatchKey)))
		if sig.Message != "" {
			builder.WriteString(fmt.Sprintf("   _%s_\n", escapeMarkdown(sig.Message)))
		}
		builder.WriteString("\n")
	}
	builder.WriteString(fmt.Sprintf("📡 Sources: %s\n", formatSources(meta.SourcesContributing)))
	builder.WriteString(fmt.Sprintf("🕐 %s\n", meta.Timestamp.UTC().Format("2006-01-02 15:04 UTC")))
	return builder.String()
}

func signalEmoji(t models.SignalType) string {
	switch t {
	case models.SignalCorners:
		return "🚩"
	case models.SignalCards:
		return "🟨"
	case models.SignalBothTeamsScore:
		return "⚽"
	default:
		return "📊"
	}
}

func formatSignalType(t models.SignalType) string {
	parts := strings.Split(string(t), "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return strings.Join(parts, " ")
}

func formatSources(sources []models.Source) string {
	if len(sources) == 0 {
		return "—"
	}
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
