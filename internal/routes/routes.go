package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/serenify-care/internal/handlers"
	"github.com/AnshRaj112/serenify-care/internal/middleware"
)

const requestTimeout = 30 * time.Second

// Options carries the middleware shared by every route.
type Options struct {
	Verify         middleware.TokenVerifier
	AllowedOrigins []string
	Metrics        *middleware.Metrics
	RedisLimiter   *middleware.RedisRateLimiter
	// Limiters enables security headers and the in-process per-IP limits (production).
	Limiters *middleware.Limiters
	Log      logrus.FieldLogger
}

// NewRouter builds the chi router.
func NewRouter(h *handlers.Handler, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(opts.Log))
	r.Use(chimw.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Instrument)
	}
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.Limiters != nil {
		r.Use(middleware.SecurityHeaders)
		r.Use(opts.Limiters.GlobalRateLimit)
	}
	r.Use(opts.RedisLimiter.Middleware)

	// Health and metrics
	r.Get("/health", h.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	// Live channel authenticates itself from the token query parameter
	r.Get("/ws/chat", h.ChatWebSocket)

	requireAuth := middleware.RequireAuth(opts.Verify)
	self := middleware.RequireSelf("id")

	// Resources answer on their published paths; the shorter REST-style aliases stay for existing clients.
	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			if opts.Limiters != nil {
				r.With(opts.Limiters.LoginRateLimit).Post("/login", h.Login)
			} else {
				r.Post("/login", h.Login)
			}
			r.Get("/check-email", h.CheckEmail)
			r.Post("/reset-password-direct", h.ResetPasswordDirect)
			r.Post("/reset-password", h.ResetPasswordDirect)
			r.With(requireAuth).Post("/logout", h.Logout)
			r.With(requireAuth).Get("/me", h.Me)
		})

		r.With(middleware.OptionalAuth(opts.Verify)).Post("/activity", h.RecordActivity)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/users", func(r chi.Router) {
				r.Get("/{id}", h.GetUser)
				r.With(self).Put("/{id}", h.UpdateUser)
				r.With(self).Delete("/{id}", h.DeleteUser)
				r.With(self).Get("/audit/{id}", h.AccountAudit)
			})

			r.Route("/account-settings/{id}", func(r chi.Router) {
				r.Use(self)
				r.Put("/email", h.ChangeEmail)
				r.Put("/password", h.ChangePassword)
				r.Put("/availability", h.SetAvailability)
				r.Delete("/", h.DeleteUser)
			})

			r.Route("/therapists", func(r chi.Router) {
				r.Post("/", h.RegisterTherapist)
				r.Get("/available", h.ListAvailableTherapists)
				r.Post("/assign", h.AssignTherapist)
				r.Post("/unassign", h.UnassignTherapist)
				r.Get("/student/{id}", h.TherapistsForStudent)
				r.Get("/{id}", h.GetTherapistDetails)
				r.Put("/{id}", h.UpdateTherapist)
				r.Get("/{id}/students", h.StudentsForTherapist)
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Post("/schedule", h.ScheduleAppointment)
				r.Post("/", h.ScheduleAppointment)
				r.Get("/student/{id}", h.StudentAppointments)
				r.Get("/therapist/{id}", h.TherapistAppointments)
				r.Get("/{id}", h.GetAppointment)
				r.Put("/{id}", h.UpdateAppointment)
				r.Put("/{id}/cancel", h.CancelAppointment)
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Post("/create", h.CreateConversation)
				r.Post("/", h.CreateConversation)
				r.Get("/details/{id}", h.ConversationDetails)
				r.Get("/user/{id}", h.UserConversations)
				r.Get("/{id}", h.UserConversations)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/send", h.SendMessage)
				r.Post("/", h.SendMessage)
				r.Get("/conversations/{id}/allMessages", h.ConversationMessages)
				r.Get("/conversation/{id}", h.ConversationMessages)
				r.Put("/{id}", h.MarkAsRead)
				r.Put("/{id}/read", h.MarkAsRead)
			})

			r.Route("/surveys", func(r chi.Router) {
				r.Post("/", h.SubmitSurvey)
				r.Get("/user/{id}", h.UserSurveys)
				r.Get("/{id}", h.GetSurvey)
				r.Put("/{id}", h.UpdateSurvey)
			})

			r.Route("/journals", func(r chi.Router) {
				r.Post("/", h.CreateJournal)
				r.Get("/user/{id}", h.UserJournals)
				r.Get("/{id}", h.GetJournal)
				r.Put("/{id}", h.UpdateJournal)
				r.Delete("/{id}", h.DeleteJournal)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Post("/", h.CreateInvoice)
				r.Get("/student/{id}", h.StudentInvoices)
				r.Get("/student/{id}/export", h.ExportStudentInvoices)
				r.Get("/{id}", h.GetInvoice)
				r.Put("/{id}/pay", h.PayInvoice)
			})

			r.Route("/documents", func(r chi.Router) {
				r.Post("/createDocument", h.CreateDocument)
				r.Post("/", h.CreateDocument)
				r.Get("/users/{id}/documents", h.UserDocuments)
				r.Get("/user/{id}", h.UserDocuments)
				r.Get("/audit/user/{id}", h.UserDocumentAudit)
				r.Get("/{id}", h.GetDocument)
				r.Put("/{id}", h.UpdateDocument)
				r.Get("/{id}/audit", h.DocumentAudit)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Post("/submitReview", h.SubmitReview)
				r.Post("/", h.SubmitReview)
				r.Get("/therapist/{id}", h.TherapistReviews)
				r.Get("/{id}", h.GetReview)
				r.Put("/{id}", h.UpdateReview)
			})

			r.Post("/upload", h.UploadFile)
		})
	})

	return r
}
