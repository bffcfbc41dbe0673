package http

import (
	"net/http"

	"bday/internal/config"
	"bday/internal/http/handler"
	mw "bday/internal/http/middleware"
	"bday/internal/jobs"
	"bday/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jobsSvc *jobs.Service, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	uh := &handler.UsersHandler{
		Users: &user.Repo{DB: db},
		Jobs:  jobsSvc,
		Log:   log,
	}
	r.Route("/users", func(r chi.Router) {
		r.Get("/", uh.List)
		r.Post("/", uh.Create)

		r.Get("/{id}", uh.Get)
		r.Put("/{id}", uh.Update)
		r.Delete("/{id}", uh.Delete)
	})

	return r
}
