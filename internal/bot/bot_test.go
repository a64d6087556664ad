package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func intPtr(v int) *int { return &v }

func TestWeekMessage(t *testing.T) {
	loc := time.UTC
	yoga := &models.Course{ID: 1, Name: "Yoga & Co", MaxStudentsSession: intPtr(8), Location: models.Location{Short: "Zaal A"}}
	sessions := []*models.Session{
		{ID: 2, CourseID: 1, Course: yoga, Start: time.Date(2024, 2, 14, 18, 0, 0, 0, loc),
			Duration: models.Duration(90 * time.Minute), SubscribedIDs: []int64{1, 2}},
		{ID: 1, CourseID: 1, Course: yoga, Start: time.Date(2024, 2, 12, 9, 0, 0, 0, loc),
			Duration: models.Duration(time.Hour)},
	}

	got := WeekMessage(sessions, calendar.Date{Year: 2024, Month: time.February, Day: 12}, loc, calendar.Dutch)

	for _, want := range []string{
		"<b>12 - 18 februari 2024</b>",
		"<b>maandag 12 februari</b>\n• 9h00 - 10h00 Yoga &amp; Co @ Zaal A (0/8)",
		"<b>woensdag 14 februari</b>\n• 18h00 - 19h30 Yoga &amp; Co @ Zaal A (2/8)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Index(got, "maandag") > strings.Index(got, "woensdag") {
		t.Fatalf("days out of order:\n%s", got)
	}
	if strings.Contains(got, "dinsdag") {
		t.Fatalf("empty days must be skipped:\n%s", got)
	}
}

func TestWeekMessage_Empty(t *testing.T) {
	got := WeekMessage(nil, calendar.Date{Year: 2024, Month: time.February, Day: 12}, time.UTC, calendar.English)
	if !strings.Contains(got, "12 - 18 February 2024") || !strings.Contains(got, "Geen sessies") {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFullNotifications_BroadcastToAdmins(t *testing.T) {
	out := &recordingSender{}
	b := &Bot{
		out:      out,
		loc:      time.UTC,
		locale:   calendar.Dutch,
		baseURL:  "https://opengym.test",
		adminIDs: []int64{10, 20},
		log:      zap.NewNop(),
	}

	course := &models.Course{ID: 3, Name: "Klimmen", MaxStudentsCourse: intPtr(2), StudentIDs: []int64{1, 2}}
	b.CourseFull(context.Background(), course)

	if len(out.sent) != 2 || out.sent[0].ChatID != 10 || out.sent[1].ChatID != 20 {
		t.Fatalf("unexpected recipients %+v", out.sent)
	}
	if want := "🔒 Cursus <b>Klimmen</b> is volzet (2/2).\nhttps://opengym.test/course/3"; out.sent[0].Text != want {
		t.Fatalf("got %q", out.sent[0].Text)
	}

	session := &models.Session{ID: 7, CourseID: 3, Course: course, Start: time.Date(2024, 2, 15, 19, 0, 0, 0, time.UTC),
		Duration: models.Duration(time.Hour), MaxStudentsDiffCourse: true, MaxStudents: intPtr(1), SubscribedIDs: []int64{1}}
	b.SessionFull(context.Background(), session)

	last := out.sent[len(out.sent)-1].Text
	if !strings.Contains(last, "donderdag 15 februari, 19h00 - 20h00") || !strings.Contains(last, "(1/1)") ||
		!strings.HasSuffix(last, "/session/7") {
		t.Fatalf("got %q", last)
	}
	if out.sent[len(out.sent)-1].ParseMode != "HTML" {
		t.Fatal("messages are sent as HTML")
	}
}
