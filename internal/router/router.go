package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studydesk-backend/internal/handlers"
	"studydesk-backend/internal/middleware"
)

// Dashboard groups the database-backed handlers. Nil fields are not mounted.
type Dashboard struct {
	Flashcards    *handlers.FlashcardHandler
	PastQuestions *handlers.PastQuestionHandler
	Resources     *handlers.ResourceHandler
	Courses       *handlers.CourseHandler
	Activity      *handlers.ActivityHandler
	Stats         *handlers.DashboardHandler
}

type Options struct {
	JWTAuth         *middleware.JWTAuth
	Quiz            *handlers.QuizHandler
	GenerateLimiter middleware.Limiter
	Dashboard       *Dashboard
	StorageDir      string
	FrontendURL     string
}

func New(opts Options) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(opts.FrontendURL))

	// Liveness
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Quiz generator is running"))
	})

	if opts.StorageDir != "" {
		files := http.StripPrefix("/files/", http.FileServer(http.Dir(opts.StorageDir)))
		r.Get("/files/*", func(w http.ResponseWriter, r *http.Request) {
			// No directory listings.
			if r.URL.Path == "/files/" || r.URL.Path[len(r.URL.Path)-1] == '/' {
				http.NotFound(w, r)
				return
			}
			files.ServeHTTP(w, r)
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(opts.JWTAuth.Middleware)

		// ──── Quiz generation ────
		r.Group(func(r chi.Router) {
			if opts.GenerateLimiter != nil {
				r.Use(middleware.RateLimit(opts.GenerateLimiter))
			}
			r.Post("/generate-quiz", opts.Quiz.Generate)
		})

		d := opts.Dashboard
		if d == nil {
			return
		}

		// ──── Flashcard Routes ────
		if d.Flashcards != nil {
			r.Route("/flashcards", func(r chi.Router) {
				r.Route("/decks", func(r chi.Router) {
					r.Post("/", d.Flashcards.CreateDeck)
					r.Get("/", d.Flashcards.ListDecks)
					r.Get("/{id}", d.Flashcards.GetDeck)
					r.Get("/{id}/stats", d.Flashcards.GetDeckStats)
					r.Post("/{id}/cards", d.Flashcards.AddCards)
					r.Delete("/{id}", d.Flashcards.DeleteDeck)
				})

				r.Route("/cards", func(r chi.Router) {
					r.Post("/{id}/rating", d.Flashcards.RateCard)
				})
			})
		}

		// ──── Library Routes ────
		if d.PastQuestions != nil {
			r.Route("/past-questions", func(r chi.Router) {
				r.Post("/", d.PastQuestions.Upload)
				r.Get("/", d.PastQuestions.List)
				r.Delete("/{id}", d.PastQuestions.Delete)
			})
		}

		if d.Resources != nil {
			r.Route("/resources", func(r chi.Router) {
				r.Post("/", d.Resources.Create)
				r.Get("/", d.Resources.List)
				r.Delete("/{id}", d.Resources.Delete)
			})
		}

		// ──── Course Routes ────
		if d.Courses != nil {
			r.Route("/courses", func(r chi.Router) {
				r.Post("/", d.Courses.Create)
				r.Get("/", d.Courses.List)
				r.Put("/{id}/progress", d.Courses.UpdateProgress)
				r.Delete("/{id}", d.Courses.Delete)
			})
		}

		// ──── Activity & Dashboard Routes ────
		if d.Activity != nil {
			r.Route("/activity", func(r chi.Router) {
				r.Post("/", d.Activity.Record)
				r.Get("/", d.Activity.List)
			})
		}

		if d.Stats != nil {
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", d.Stats.Stats)
				r.Get("/activity", d.Stats.Activity)
			})
		}
	})

	return r
}
