package bot

import (
	"context"
	"fmt"
	"html"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/models"
)

func (b *Bot) CourseFull(_ context.Context, course *models.Course) {
	b.broadcast(CourseFullMessage(course, b.baseURL))
}

func (b *Bot) SessionFull(_ context.Context, session *models.Session) {
	b.broadcast(SessionFullMessage(session, b.baseURL, b.loc, b.locale))
}

func (b *Bot) broadcast(text string) {
	for _, id := range b.adminIDs {
		b.sendMessage(id, text)
	}
}

func CourseFullMessage(course *models.Course, baseURL string) string {
	return fmt.Sprintf("🔒 Cursus <b>%s</b> is volzet (%d/%d).\n%s/course/%d",
		html.EscapeString(course.Name), len(course.StudentIDs), derefInt(course.MaxStudentsCourse), baseURL, course.ID)
}

func SessionFullMessage(s *models.Session, baseURL string, loc *time.Location, locale calendar.Locale) string {
	name := ""
	if s.Course != nil {
		name = s.Course.Name
	}
	start := s.Start.In(loc)
	when := fmt.Sprintf("%s %d %s, %s", locale.WeekdayName(start.Weekday()), start.Day(),
		locale.MonthName(start.Month()), calendar.TimeRange(start, s.End().In(loc)))
	return fmt.Sprintf("🔒 Sessie <b>%s</b> op %s is volzet (%d/%d).\n%s/session/%d",
		html.EscapeString(name), when, len(s.SubscribedIDs), derefInt(s.Effective().MaxStudents), baseURL, s.ID)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
