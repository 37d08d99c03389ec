package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/371050/study-pwa/internal/api"
	apiMiddleware "github.com/371050/study-pwa/internal/api/middleware"
)

// setupRouter builds the HTTP routes over the application's services.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	if app.metrics != nil {
		r.Use(apiMiddleware.MetricsMiddleware(app.metrics))
	}
	r.Use(middleware.Recoverer)

	subjectHandler := api.NewSubjectHandler(app.subjects, app.snapshots, app.logger)
	unitHandler := api.NewUnitHandler(app.ledger, app.schedule, app.entries, app.logger)
	reviewHandler := api.NewReviewHandler(app.ledger, app.logger)
	scheduleHandler := api.NewScheduleHandler(app.schedule, app.logger)
	snapshotHandler := api.NewSnapshotHandler(app.snapshots, app.logger)

	r.Route("/api", func(r chi.Router) {
		if app.jwtService != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(app.jwtService).Authenticate)
		}

		r.Route("/subjects", func(r chi.Router) {
			r.Get("/", subjectHandler.ListSubjects)
			r.Post("/", subjectHandler.AddSubject)
			r.Post("/seed", subjectHandler.SeedSubjects)
			r.Post("/{id}/move", subjectHandler.MoveSubject)
			r.Get("/{id}/units", unitHandler.ListUnits)
			r.Post("/{id}/units", unitHandler.CreateUnit)
			r.Post("/{id}/entries", unitHandler.ApplyEntries)
			r.Post("/{id}/record", unitHandler.RecordEntry)
		})

		r.Route("/units/{id}", func(r chi.Router) {
			r.Delete("/", unitHandler.DeleteUnit)
			r.Put("/title", unitHandler.UpdateTitle)
			r.Get("/status", unitHandler.UnitStatus)
			r.Get("/reviews", reviewHandler.ListReviews)
			r.Post("/reviews", reviewHandler.InsertReview)
			r.Get("/reviews/next", reviewHandler.NextReviewNo)
			r.Post("/reviews/renumber", reviewHandler.RenumberReviews)
		})

		r.Put("/reviews/{id}", reviewHandler.UpdateReview)
		r.Delete("/reviews/{id}", reviewHandler.DeleteReview)

		r.Get("/schedule/due", scheduleHandler.Due)
		r.Get("/schedule/upcoming", scheduleHandler.Upcoming)

		r.Get("/snapshot", snapshotHandler.Export)
		r.Put("/snapshot", snapshotHandler.Import)
		r.Delete("/snapshot", snapshotHandler.Clear)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	if app.metrics != nil {
		r.Method(http.MethodGet, app.config.Metrics.Path, app.metrics.Handler())
	}

	return r
}
