package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"forex-signal-engine/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// PriceReader serves the /price command.
type PriceReader interface {
	GetPrice(ctx context.Context, pair string) (*domain.PriceSummary, error)
	ListPrices(ctx context.Context) ([]domain.PriceSummary, error)
}

// SignalReader serves the /signals command.
type SignalReader interface {
	List(ctx context.Context, status string, limit int) ([]domain.Signal, error)
}

// Notifier is a Telegram bot that answers price and signal queries and pushes
// closure alerts into a configured chat. It satisfies service.ClosureNotifier.
type Notifier struct {
	bot     *tele.Bot
	chatID  int64
	prices  PriceReader
	signals SignalReader
}

// NewNotifier builds the bot, or returns nil when no token is configured.
func NewNotifier(token string, chatID int64, prices PriceReader, signals SignalReader) (*Notifier, error) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}

	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	n := &Notifier{bot: b, chatID: chatID, prices: prices, signals: signals}
	n.registerHandlers()
	return n, nil
}

func (n *Notifier) registerHandlers() {
	n.bot.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	n.bot.Handle("/price", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /price XAU/USD")
		}
		pair := strings.ToUpper(args[0])
		summary, err := n.prices.GetPrice(context.Background(), pair)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching price for %s: %v", pair, err))
		}
		if summary == nil {
			return c.Send(fmt.Sprintf("No price stored for %s", pair))
		}
		return c.Send(fmt.Sprintf(
			"%s\nPrice: %.4f\nChange: %+.4f (%+.2f%%)\nHigh: %.4f  Low: %.4f",
			summary.Pair, summary.CurrentPrice, summary.ChangeAmount, summary.ChangePercent,
			summary.HighPrice, summary.LowPrice,
		))
	})

	n.bot.Handle("/signals", func(c tele.Context) error {
		signals, err := n.signals.List(context.Background(), "", 20)
		if err != nil {
			return c.Send(fmt.Sprintf("Error listing signals: %v", err))
		}
		if len(signals) == 0 {
			return c.Send("No signals stored")
		}
		var sb strings.Builder
		for _, s := range signals {
			fmt.Fprintf(&sb, "%s %s @ %.4f [%s]\n", s.Pair, s.Type, s.EntryPrice, s.Status)
		}
		return c.Send(sb.String())
	})
}

// Start begins long-polling in the background.
func (n *Notifier) Start() {
	log.Println("Telegram bot started")
	go n.bot.Start()
}

// Stop shuts the long poller down.
func (n *Notifier) Stop() {
	n.bot.Stop()
}

// NotifySignalClosed pushes a closure alert to the configured chat. Send
// failures are logged, signal evaluation never blocks on Telegram.
func (n *Notifier) NotifySignalClosed(signal domain.Signal, upd domain.SignalUpdate) {
	if n.chatID == 0 {
		return
	}

	outcome := "Stop loss hit"
	if upd.TPHit {
		outcome = "Take profit hit"
	}
	msg := fmt.Sprintf(
		"Signal closed: %s %s\n%s at %.4f\nEntry: %.4f\nPnL: %+.2f",
		signal.Pair, signal.Type, outcome, upd.CurrentPrice, signal.EntryPrice, upd.PnL,
	)

	if _, err := n.bot.Send(tele.ChatID(n.chatID), msg); err != nil {
		log.Printf("telegram notify error for signal %s: %v", signal.ID, err)
	}
}
