package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osteovet/clinic-backend/api/controllers"
	"github.com/osteovet/clinic-backend/api/middleware"
	"github.com/osteovet/clinic-backend/internal/animals"
	"github.com/osteovet/clinic-backend/internal/appointments"
	"github.com/osteovet/clinic-backend/internal/auditlog"
	"github.com/osteovet/clinic-backend/internal/auth"
	"github.com/osteovet/clinic-backend/internal/blog"
	"github.com/osteovet/clinic-backend/internal/booking"
	"github.com/osteovet/clinic-backend/internal/catalog"
	"github.com/osteovet/clinic-backend/internal/reminders"
	"github.com/osteovet/clinic-backend/internal/todos"
	"github.com/osteovet/clinic-backend/internal/treatmentnotes"
	"github.com/osteovet/clinic-backend/internal/users"
	"github.com/osteovet/clinic-backend/pkg/auth/session"
	"github.com/osteovet/clinic-backend/pkg/config"
	"github.com/osteovet/clinic-backend/pkg/logger"
	"github.com/osteovet/clinic-backend/pkg/metrics"
)

// RedisStore is the slice of the redis client the HTTP layer needs.
type RedisStore interface {
	controllers.Pinger
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	IdempotencyKey(scope, id string) string
}

// Params lists everything NewRouter wires.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    RedisStore
	Sessions session.Checker
	Accounts middleware.UserFinder
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTPMetrics

	Auth           auth.Service
	Users          *users.Service
	Animals        *animals.Service
	TreatmentNotes *treatmentnotes.Service
	Catalog        *catalog.Service
	Appointments   *appointments.Service
	Booking        *booking.Service
	Reminders      *reminders.Service
	Todos          *todos.Service
	Blog           *blog.Service
	AuditLog       *auditlog.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
		middleware.CORS(cfg.CORS),
	)

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": p.Redis,
		}))
	})

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit)
	ipLimiter := middleware.NewIPRateLimiter(cfg.RateLimit)

	authenticate := middleware.Auth(cfg.JWT, p.Sessions, p.Accounts, logg)
	staffOnly := middleware.RequireStaff(logg)
	adminOnly := middleware.RequireAdmin(logg)
	idempotent := middleware.Idempotency(p.Redis, middleware.DefaultIdempotencyTTL, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(ipLimiter, logg))

		// public
		r.Group(func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/auth/register", controllers.AuthRegister(p.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/auth/login", controllers.AuthLogin(p.Auth, logg))
			r.Post("/auth/refresh", controllers.AuthRefresh(p.Auth, logg))

			r.Get("/services", controllers.ServicesList(p.Catalog, logg))
			r.Get("/blog", controllers.BlogListPublished(p.Blog, logg))
			r.Get("/blog/{slug}", controllers.BlogGetBySlug(p.Blog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/auth/logout", controllers.AuthLogout(p.Auth, logg))
			r.Get("/auth/me", controllers.AuthMe(p.Auth, logg))
			r.With(staffOnly).Get("/auth/pending-clients", controllers.AuthPendingClients(p.Auth, logg))
			r.With(staffOnly).Put("/auth/validate-client/{userID}", controllers.AuthValidateClient(p.Auth, logg))

			r.Route("/users", func(r chi.Router) {
				r.With(staffOnly).Get("/clients", controllers.UsersListClients(p.Users, logg))
				r.With(staffOnly).Get("/search", controllers.UsersSearch(p.Users, logg))
				r.With(staffOnly).Put("/bulk/validate", controllers.UsersBulkValidate(p.Users, logg))
				r.Get("/{userID}", controllers.UserGet(p.Users, logg))
				r.Put("/{userID}", controllers.UserUpdate(p.Users, logg))
				r.With(adminOnly).Delete("/{userID}", controllers.UserDelete(p.Users, logg))
				r.With(staffOnly).Put("/{userID}/validate", controllers.AuthValidateClient(p.Auth, logg))
			})

			r.Route("/animals", func(r chi.Router) {
				r.Get("/", controllers.AnimalsList(p.Animals, logg))
				r.With(idempotent).Post("/", controllers.AnimalCreate(p.Animals, logg))
				r.Get("/{animalID}", controllers.AnimalGet(p.Animals, logg))
				r.Put("/{animalID}", controllers.AnimalUpdate(p.Animals, logg))
				r.Delete("/{animalID}", controllers.AnimalDelete(p.Animals, logg))
				r.Get("/{animalID}/treatment-notes", controllers.TreatmentNotesList(p.TreatmentNotes, logg))
				r.With(staffOnly, idempotent).Post("/{animalID}/treatment-notes", controllers.TreatmentNoteCreate(p.TreatmentNotes, logg))
			})

			r.With(adminOnly, idempotent).Post("/services", controllers.ServiceCreate(p.Catalog, logg))
			r.With(adminOnly).Put("/services/{serviceID}", controllers.ServiceUpdate(p.Catalog, logg))

			r.Route("/appointments", func(r chi.Router) {
				r.Get("/", controllers.AppointmentsList(p.Appointments, logg))
				r.With(idempotent).Post("/", controllers.AppointmentCreate(p.Appointments, logg))
				r.Get("/{appointmentID}", controllers.AppointmentGet(p.Appointments, logg))
				r.Put("/{appointmentID}", controllers.AppointmentUpdate(p.Appointments, logg))
				r.Put("/{appointmentID}/cancel", controllers.AppointmentCancel(p.Appointments, logg))
				r.With(staffOnly).Put("/{appointmentID}/confirm", controllers.AppointmentConfirm(p.Appointments, logg))
				r.With(staffOnly).Put("/{appointmentID}/refuse", controllers.AppointmentRefuse(p.Appointments, logg))
				r.With(staffOnly).Put("/{appointmentID}/complete", controllers.AppointmentComplete(p.Appointments, logg))
				r.With(adminOnly).Delete("/{appointmentID}", controllers.AppointmentDelete(p.Appointments, logg))
			})

			r.With(middleware.Idempotency(p.Redis, middleware.BookingIdempotencyTTL, logg)).
				Post("/bookings", controllers.BookingCreate(p.Booking, logg))

			r.Route("/reminders", func(r chi.Router) {
				r.Use(staffOnly)
				r.Get("/", controllers.RemindersList(p.Reminders, logg))
				r.With(idempotent).Post("/", controllers.ReminderCreate(p.Reminders, logg))
				r.With(idempotent).Post("/booking", controllers.RemindersForBooking(p.Reminders, logg))
				r.Get("/{reminderID}", controllers.ReminderGet(p.Reminders, logg))
				r.Put("/{reminderID}", controllers.ReminderUpdate(p.Reminders, logg))
				r.Delete("/{reminderID}", controllers.ReminderDelete(p.Reminders, logg))
				r.Put("/{reminderID}/complete", controllers.ReminderComplete(p.Reminders, logg))
				r.Put("/{reminderID}/snooze", controllers.ReminderSnooze(p.Reminders, logg))
			})

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", controllers.TodosList(p.Todos, logg))
				r.With(idempotent).Post("/", controllers.TodoCreate(p.Todos, logg))
				r.Put("/{todoID}", controllers.TodoUpdate(p.Todos, logg))
				r.Delete("/{todoID}", controllers.TodoDelete(p.Todos, logg))
				r.Put("/{todoID}/toggle", controllers.TodoToggle(p.Todos, logg))
			})

			r.Route("/blog/posts", func(r chi.Router) {
				r.Use(staffOnly)
				r.Get("/", controllers.BlogListAll(p.Blog, logg))
				r.With(idempotent).Post("/", controllers.BlogCreate(p.Blog, logg))
				r.Put("/{postID}", controllers.BlogUpdate(p.Blog, logg))
				r.Delete("/{postID}", controllers.BlogDelete(p.Blog, logg))
				r.Put("/{postID}/publish", controllers.BlogPublish(p.Blog, logg))
			})

			r.With(adminOnly).Get("/audit-logs", controllers.AuditLogsList(p.AuditLog, logg))
		})
	})

	return r
}
