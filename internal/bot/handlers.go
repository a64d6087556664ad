package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if !message.IsCommand() {
		return
	}
	chatID := message.Chat.ID
	b.log.Debug("command", zap.String("command", message.Command()), zap.Int64("chat_id", chatID))

	switch message.Command() {
	case "start", "help":
		b.sendMessage(chatID, helpText)
	case "week":
		b.handleWeekCommand(ctx, chatID)
	case "calendar":
		b.handleCalendarCommand(chatID)
	default:
		b.sendMessage(chatID, "Onbekend commando. Gebruik /help.")
	}
}

const helpText = "<b>Open Gym</b>\n\n" +
	"/week - sessies van deze week\n" +
	"/calendar - open de kalender"

func (b *Bot) handleWeekCommand(ctx context.Context, chatID int64) {
	now := b.now().In(b.loc)
	from, to := calendar.WeekRange(now.Year(), now.Month(), now.Day(), b.loc)

	sessions, err := b.calendar.SessionsBetween(ctx, from, to)
	if err != nil {
		b.log.Error("week sessions", zap.Error(err))
		b.sendMessage(chatID, "Kon de sessies niet ophalen.")
		return
	}
	b.sendMessage(chatID, WeekMessage(sessions, calendar.DateOf(from, b.loc), b.loc, b.locale))
}

func (b *Bot) handleCalendarCommand(chatID int64) {
	url := b.baseURL + "/calendar"

	msg := tgbotapi.NewMessage(chatID, "Open de kalender:\n\n"+
		"<i>Werkt de knop niet? Open de link in je browser:</i>\n"+
		fmt.Sprintf("<code>%s</code>", url))
	msg.ParseMode = "HTML"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📅 Kalender", url),
		),
	)
	b.send(msg)
}

// WeekMessage lists the sessions of the week starting at monday, one block
// per day that has sessions.
func WeekMessage(sessions []*models.Session, monday calendar.Date, loc *time.Location, locale calendar.Locale) string {
	end := monday.AddDays(6)
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>%s</b>\n", calendar.WeekHeader(monday, end, locale))

	if len(sessions) == 0 {
		sb.WriteString("\nGeen sessies deze week.")
		return sb.String()
	}

	byDay := calendar.GroupByDay(sessions, loc)
	for i := 0; i < 7; i++ {
		day := monday.AddDays(i)
		list := byDay[day]
		if len(list) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n<b>%s %d %s</b>\n", locale.WeekdayName(day.Weekday()), day.Day, locale.MonthName(day.Month))
		for _, s := range list {
			sb.WriteString(sessionLine(s, loc))
			sb.WriteByte('\n')
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func sessionLine(s *models.Session, loc *time.Location) string {
	name := "?"
	if s.Course != nil {
		name = s.Course.Name
	}
	line := fmt.Sprintf("• %s %s", calendar.TimeRange(s.Start.In(loc), s.End().In(loc)), html.EscapeString(name))
	if short := s.Effective().Location.Short; short != "" {
		line += " @ " + html.EscapeString(short)
	}
	if limit := s.Effective().MaxStudents; limit != nil {
		line += fmt.Sprintf(" (%d/%d)", len(s.SubscribedIDs), *limit)
	}
	return line
}
