package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"opengym/internal/calendar"
	"opengym/internal/metrics"
	"opengym/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
)

//go:embed views
var views embed.FS

// NewApp builds the fiber application with every route registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Open Gym",
		Views:        h.engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    50 * 1024 * 1024,
		ErrorHandler: h.errorHandler,
	})

	app.Use(recover.New())
	app.Use(h.Authenticate)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Get("/not-permitted", h.NotPermitted)

	app.Get("/", h.Landing)
	app.Get("/calendar", h.CalendarPage)
	app.Get("/calendar/month/:year/:month", h.MonthPartial)
	app.Get("/calendar/week/:year/:month/:day", h.WeekPartial)
	app.Get("/api/calendar", h.CalendarAPI)

	app.Get("/register", h.RegisterPage)
	app.Post("/register", h.Register)
	app.Get("/activate/:token", h.Activate)
	app.Post("/activate/resend", h.ResendActivation)
	app.Get("/login", h.LoginPage)
	app.Post("/login", h.Login)
	app.Post("/logout", h.Logout)

	app.Get("/courses", h.Courses)
	app.Get("/courses/mine", RequireLogin, h.MyCourses)
	app.Get("/course/new", RequireLogin, h.NewCoursePage)
	app.Post("/course/new", RequireLogin, h.CreateCourse)
	app.Get("/course/:id", h.CourseDetail)
	app.Post("/course/:id", h.CourseAction)
	app.Get("/course/:id/edit", RequireLogin, h.EditCoursePage)
	app.Post("/course/:id/edit", RequireLogin, h.UpdateCourse)
	app.Post("/course/:id/delete", RequireLogin, h.DeleteCourse)
	app.Get("/course/:id/session/new", RequireLogin, h.NewSessionPage)
	app.Post("/course/:id/session/new", RequireLogin, h.CreateSessions)
	app.Get("/course/:id/roster.xlsx", RequireLogin, h.Roster)
	app.Get("/session/:id", h.SessionDetail)
	app.Get("/building-day/:id", h.BuildingDayDetail)
	app.Post("/building-day/:id", h.BuildingDayAction)
	app.Get("/event/:id", h.EventDetail)

	app.Get("/albums", h.Albums)
	app.Get("/album/new", RequireLogin, h.NewAlbumPage)
	app.Post("/album/new", RequireLogin, h.CreateAlbum)
	app.Get("/album/:id", h.AlbumDetail)
	app.Post("/album/:id", h.AlbumAction)

	staff := app.Group("/staff", RequireLogin)
	staff.Get("/", h.StaffPage)
	staff.Post("/news", h.CreateNews)
	staff.Post("/bulletin", h.SetBulletin)
	staff.Post("/event", h.CreateEvent)
	staff.Post("/building-day", h.CreateBuildingDay)

	return app
}

func (h *Handler) engine() *html.Engine {
	sub, err := fs.Sub(views, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(template.FuncMap{
		"duration": func(d models.Duration) string {
			return calendar.FormatDuration(d.Std(), h.locale)
		},
		"timerange": func(start, end time.Time) string {
			return calendar.TimeRange(start.In(h.loc), end.In(h.loc))
		},
		"date": func(t time.Time) string {
			local := t.In(h.loc)
			return h.locale.WeekdayName(local.Weekday()) + " " + itoa(int64(local.Day())) + " " +
				h.locale.MonthName(local.Month()) + " " + itoa(int64(local.Year()))
		},
		"isodate": func(d calendar.Date) string { return d.String() },
		"deref": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
	})
	return engine
}

func (h *Handler) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	} else {
		h.log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).SendString(http.StatusText(code))
}
