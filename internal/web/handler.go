package web

import (
	"errors"
	"strconv"
	"time"

	"opengym/internal/apperr"
	"opengym/internal/calendar"
	"opengym/internal/metrics"
	"opengym/internal/observability"
	"opengym/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"
)

// Deps are the services the web layer talks to.
type Deps struct {
	Courses       service.CourseService
	Subscriptions service.SubscriptionService
	Calendar      service.CalendarService
	Users         service.UserService
	News          service.NewsService
	Albums        service.AlbumService
	Events        service.EventService
	Location      *time.Location
	Locale        calendar.Locale
	SecureCookies bool
	Log           *zap.Logger
}

type Handler struct {
	courses       service.CourseService
	subscriptions service.SubscriptionService
	calendar      service.CalendarService
	users         service.UserService
	news          service.NewsService
	albums        service.AlbumService
	events        service.EventService
	loc           *time.Location
	locale        calendar.Locale
	secureCookies bool
	log           *zap.Logger
	validate      *validator.Validate
	markdown      goldmark.Markdown
	now           func() time.Time
}

func NewHandler(d Deps) *Handler {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		courses:       d.Courses,
		subscriptions: d.Subscriptions,
		calendar:      d.Calendar,
		users:         d.Users,
		news:          d.News,
		albums:        d.Albums,
		events:        d.Events,
		loc:           loc,
		locale:        d.Locale,
		secureCookies: d.SecureCookies,
		log:           d.Log,
		validate:      validator.New(),
		markdown:      newMarkdown(),
		now:           time.Now,
	}
}

// page renders name inside the main layout with the viewer added to data.
func (h *Handler) page(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Viewer"] = viewer(c)
	data["Locale"] = h.locale
	return c.Render(name, data, "layouts/main")
}

// fail maps business rejections to the "not permitted" page and reports
// everything else.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if apperr.IsDomain(err) {
		h.log.Info("request rejected",
			zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
		return c.Redirect("/not-permitted", fiber.StatusSeeOther)
	}
	return h.internal(c, err)
}

// lookupFail is fail for GET pages, where a missing object is a 404.
func (h *Handler) lookupFail(c *fiber.Ctx, err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return fiber.ErrNotFound
	}
	return h.fail(c, err)
}

func (h *Handler) internal(c *fiber.Ctx, err error) error {
	metrics.HandlerErrors.Inc()
	observability.CaptureErr(err)
	h.log.Error("handler error",
		zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
	return fiber.ErrInternalServerError
}

func (h *Handler) NotPermitted(c *fiber.Ctx) error {
	c.Status(fiber.StatusForbidden)
	return h.page(c, "not_permitted", nil)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.ErrNotFound
	}
	return id, nil
}

func formID(c *fiber.Ctx, name string) (int64, bool) {
	v := c.FormValue(name)
	if v == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	return id, err == nil
}
