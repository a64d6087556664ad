package web

import (
	"strconv"
	"time"

	"opengym/internal/calendar"

	"github.com/gofiber/fiber/v2"
)

// Landing shows the news bulletins, the favourite albums and this month.
func (h *Handler) Landing(c *fiber.Ctx) error {
	ctx := c.UserContext()
	now := h.now().In(h.loc)

	bulletins, err := h.news.Bulletins(ctx)
	if err != nil {
		return h.internal(c, err)
	}
	favourites, err := h.albums.Favourites(ctx)
	if err != nil {
		return h.internal(c, err)
	}
	month, err := h.calendar.Month(ctx, viewer(c), now.Year(), now.Month())
	if err != nil {
		return h.internal(c, err)
	}
	return h.page(c, "index", fiber.Map{
		"Bulletins":  bulletins,
		"Favourites": favourites,
		"Month":      month,
	})
}

func (h *Handler) CalendarPage(c *fiber.Ctx) error {
	now := h.now().In(h.loc)
	month, err := h.calendar.Month(c.UserContext(), viewer(c), now.Year(), now.Month())
	if err != nil {
		return h.internal(c, err)
	}
	return h.page(c, "calendar", fiber.Map{"Month": month})
}

// MonthPartial renders only the month grid, for in-page navigation.
func (h *Handler) MonthPartial(c *fiber.Ctx) error {
	year, month, _, ok := parseDate(c, false)
	if !ok {
		return fiber.ErrNotFound
	}
	m, err := h.calendar.Month(c.UserContext(), viewer(c), year, month)
	if err != nil {
		return h.internal(c, err)
	}
	return c.Render("partials/month", m)
}

func (h *Handler) WeekPartial(c *fiber.Ctx) error {
	year, month, day, ok := parseDate(c, true)
	if !ok {
		return fiber.ErrNotFound
	}
	w, err := h.calendar.Week(c.UserContext(), viewer(c), year, month, day)
	if err != nil {
		return h.internal(c, err)
	}
	return c.Render("partials/week", w)
}

// CalendarAPI returns the month or week grid as JSON. view is "month"
// (default) or "week"; date is YYYY-MM-DD and defaults to today.
func (h *Handler) CalendarAPI(c *fiber.Ctx) error {
	current := h.now().In(h.loc)
	if d := c.Query("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, h.loc)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		current = parsed
	}

	switch c.Query("view", "month") {
	case "month":
		m, err := h.calendar.Month(c.UserContext(), viewer(c), current.Year(), current.Month())
		if err != nil {
			return h.internal(c, err)
		}
		return c.JSON(m)
	case "week":
		w, err := h.calendar.Week(c.UserContext(), viewer(c), current.Year(), current.Month(), current.Day())
		if err != nil {
			return h.internal(c, err)
		}
		return c.JSON(w)
	}
	return fiber.NewError(fiber.StatusBadRequest, "view must be month or week")
}

func parseDate(c *fiber.Ctx, withDay bool) (int, time.Month, int, bool) {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, 0, false
	}
	month, err := strconv.Atoi(c.Params("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, false
	}
	if !withDay {
		return year, time.Month(month), 1, true
	}
	day, err := strconv.Atoi(c.Params("day"))
	if err != nil || day < 1 {
		return 0, 0, 0, false
	}
	// reject 31 February and friends
	if calendar.DateOf(time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC), time.UTC).Day != day {
		return 0, 0, 0, false
	}
	return year, time.Month(month), day, true
}
