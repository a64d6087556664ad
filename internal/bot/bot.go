package bot

import (
	"context"
	"fmt"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/models/config"
	"opengym/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

// sender is the part of *tgbotapi.BotAPI the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot tells the admins when a course or session fills up and answers a few
// read-only commands about the calendar.
type Bot struct {
	api      *tgbotapi.BotAPI
	out      sender
	calendar service.CalendarService
	loc      *time.Location
	locale   calendar.Locale
	baseURL  string
	adminIDs []int64
	log      *zap.Logger
	now      func() time.Time
}

var _ service.FullNotifier = (*Bot)(nil)

// NewBot returns nil without error when no token is configured.
func NewBot(cfg *config.Config, calendarService service.CalendarService, log *zap.Logger) (*Bot, error) {
	if cfg.Bot.Token == "" {
		log.Info("BOT_TOKEN not set, telegram notifications disabled")
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	api.Debug = cfg.Bot.Debug

	log.Info("bot initialised",
		zap.String("username", api.Self.UserName),
		zap.Bool("debug", cfg.Bot.Debug),
		zap.Int64s("admins", cfg.Bot.AdminIDs))

	return &Bot{
		api:      api,
		out:      api,
		calendar: calendarService,
		loc:      cfg.Location,
		locale:   calendar.LocaleFor(cfg.Locale),
		baseURL:  cfg.BaseURL,
		adminIDs: cfg.Bot.AdminIDs,
		log:      log,
		now:      time.Now,
	}, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.out.Send(msg); err != nil {
		b.log.Warn("telegram send failed", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}
