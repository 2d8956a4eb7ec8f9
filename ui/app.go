package ui

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"golift/adapters/stats"
	"golift/app"
	"golift/internal"
	"golift/internal/config"
	"golift/internal/testkit"
	"golift/ports"
)

// App is the HTTP surface over the experimentation engine. When no
// repository is wired it serves seeded demo experiments from the testkit.
type App struct {
	router      *chi.Mux
	logger      *internal.Logger
	cfg         config.EngineConfig
	importCfg   config.ImportConfig
	intel       *app.IntelligenceService
	portfolio   *app.PortfolioService
	experiments *app.ExperimentService // nil without a repository
	bayes       *stats.BayesianEngine
	repo        ports.ExperimentRepository // optional
}

// Options configures the application
type Options struct {
	Engine   config.EngineConfig
	Import   config.ImportConfig
	RNG      ports.RNG
	Repo     ports.ExperimentRepository
	Importer ports.ResultImporter
	Logger   *internal.Logger
}

// NewApp creates the HTTP application
func NewApp(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	intel := app.NewIntelligenceService()

	a := &App{
		router:    chi.NewRouter(),
		logger:    logger,
		cfg:       opts.Engine,
		importCfg: opts.Import,
		intel:     intel,
		portfolio: app.NewPortfolioService(intel),
		bayes:     stats.NewBayesianEngine(opts.RNG),
		repo:      opts.Repo,
	}
	if opts.Repo != nil {
		a.experiments = app.NewExperimentService(opts.Repo, opts.Importer)
	}
	a.routes()
	return a
}

func (a *App) routes() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Timeout(30 * time.Second))

	a.router.Route("/api", func(r chi.Router) {
		r.Post("/sample-size", a.handleSampleSize)
		r.Post("/significance", a.handleSignificance)
		r.Post("/analyze", a.handleAnalyze)
		r.Get("/portfolio", a.handlePortfolio)

		r.Route("/demo/{scenario}", func(r chi.Router) {
			r.Get("/", a.handleDemo)
			r.Get("/report", a.handleDemoReport)
		})

		if a.repo != nil {
			r.Get("/experiments", a.handleListExperiments)
			r.Post("/experiments", a.handleCreateExperiment)
			r.Get("/experiments/{id}", a.handleGetExperiment)
			r.Get("/experiments/{id}/report", a.handleExperimentReport)
			r.Post("/experiments/{id}/start", a.handleStartExperiment)
			r.Post("/experiments/{id}/pause", a.handlePauseExperiment)
			r.Post("/experiments/{id}/complete", a.handleCompleteExperiment)
			r.Post("/experiments/{id}/archive", a.handleArchiveExperiment)
			r.Post("/experiments/{id}/results", a.handleImportResults)
		}
	})

	a.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

// Handler returns the root handler for serving
func (a *App) Handler() http.Handler {
	return a.router
}

// demoGenerator builds the seeded generator backing demo endpoints
func (a *App) demoGenerator() *testkit.Generator {
	return testkit.NewGenerator(a.cfg.Seed)
}
