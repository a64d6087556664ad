package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"opengym/internal/bot"
	"opengym/internal/calendar"
	"opengym/internal/jobs"
	"opengym/internal/logging"
	"opengym/internal/models/config"
	"opengym/internal/notifications"
	"opengym/internal/observability"
	"opengym/internal/repository"
	"opengym/internal/repository/album"
	"opengym/internal/repository/building_day"
	"opengym/internal/repository/course"
	"opengym/internal/repository/event"
	"opengym/internal/repository/news"
	"opengym/internal/repository/session"
	"opengym/internal/repository/user"
	"opengym/internal/service"
	album_service "opengym/internal/service/album"
	calendar_service "opengym/internal/service/calendar"
	course_service "opengym/internal/service/course"
	event_service "opengym/internal/service/event"
	news_service "opengym/internal/service/news"
	subscription_service "opengym/internal/service/subscription"
	user_service "opengym/internal/service/user"
	"opengym/internal/web"
	database "opengym/pkg"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const release = "opengym@dev"

var infrastructure = fx.Options(
	fx.Provide(
		newLogger,
		newDB,
		func(cfg *config.Config) *time.Location { return cfg.Location },
		func(cfg *config.Config) calendar.Locale { return calendar.LocaleFor(cfg.Locale) },
		func(cfg *config.Config, log *zap.Logger) service.Mailer {
			return notifications.NewMailer(cfg.Mail, log)
		},
		func(cfg *config.Config) (service.ImageHost, error) {
			return album_service.NewImageHost(cfg.Cloudinary.URL)
		},
	),
	fx.Invoke(initSentry),
)

var repositories = fx.Provide(
	repository.NewTransactor,
	user.NewUserRepository,
	course.NewCourseRepository,
	session.NewSessionRepository,
	event.NewEventRepository,
	building_day.NewBuildingDayRepository,
	news.NewNewsRepository,
	album.NewAlbumRepository,
)

var services = fx.Provide(
	course_service.NewCourseService,
	calendar_service.NewCalendarService,
	news_service.NewNewsService,
	event_service.NewEventService,
	subscription_service.NewSubscriptionService,
	bot.NewBot,
	fullNotifier,
	func(users repository.UserRepository, mailer service.Mailer, cfg *config.Config, log *zap.Logger) service.UserService {
		return user_service.NewUserService(users, mailer, cfg.JWTSecret, cfg.BaseURL, log)
	},
	func(tx repository.Transactor, albums repository.AlbumRepository, host service.ImageHost, cfg *config.Config, log *zap.Logger) service.AlbumService {
		return album_service.NewAlbumService(tx, albums, host, cfg.Cloudinary.Folder, log)
	},
	func(cal service.CalendarService, users service.UserService, mailer service.Mailer, loc *time.Location, locale calendar.Locale, cfg *config.Config, log *zap.Logger) *jobs.Reminders {
		return jobs.NewReminders(cal, users, mailer, loc, locale, cfg.BaseURL, log)
	},
	func(cfg *config.Config, reminders *jobs.Reminders, log *zap.Logger) (*jobs.Scheduler, error) {
		return jobs.NewScheduler(cfg.Jobs.ReminderSpec, cfg.Location, reminders, log)
	},
)

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	l, err := logging.Init(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		l.Closer()
		return nil
	}})
	l.Base.Info("starting", zap.String("environment", cfg.Environment), zap.String("tz", cfg.TimeZone))
	return l.Base, nil
}

func newDB(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*sqlx.DB, error) {
	db, err := database.NewPostgres(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		return db.Close()
	}})
	return db, nil
}

func initSentry(lc fx.Lifecycle, cfg *config.Config) error {
	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Environment, release)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		flush()
		return nil
	}})
	return nil
}

// fullNotifier is nil when the bot is disabled.
func fullNotifier(b *bot.Bot) service.FullNotifier {
	if b == nil {
		return nil
	}
	return b
}

type webParams struct {
	fx.In

	Courses       service.CourseService
	Subscriptions service.SubscriptionService
	Calendar      service.CalendarService
	Users         service.UserService
	News          service.NewsService
	Albums        service.AlbumService
	Events        service.EventService
	Location      *time.Location
	Locale        calendar.Locale
	Config        *config.Config
	Log           *zap.Logger
}

func runHTTP(lc fx.Lifecycle, shutdowner fx.Shutdowner, p webParams) {
	app := web.NewApp(web.NewHandler(web.Deps{
		Courses:       p.Courses,
		Subscriptions: p.Subscriptions,
		Calendar:      p.Calendar,
		Users:         p.Users,
		News:          p.News,
		Albums:        p.Albums,
		Events:        p.Events,
		Location:      p.Location,
		Locale:        p.Locale,
		SecureCookies: p.Config.IsProduction(),
		Log:           p.Log,
	}))
	addr := ":" + p.Config.HTTPPort

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				p.Log.Info("http listening", zap.String("addr", addr))
				if err := app.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Log.Error("http server", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

func runBot(lc fx.Lifecycle, b *bot.Bot, log *zap.Logger) {
	if b == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := b.Start(ctx); err != nil {
					log.Error("bot stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func runJobs(lc fx.Lifecycle, s *jobs.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop(ctx)
			return nil
		},
	})
}
