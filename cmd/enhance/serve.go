package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	enhance "github.com/alnah/go-enhance"
)

// shutdownTimeout bounds the graceful shutdown of the preview server.
const shutdownTimeout = 5 * time.Second

// livePage is the part of enhance.Page the preview server reads.
type livePage interface {
	HTML() (string, error)
	ImagesLoaded() int
	ImagesPending() int
	ClockHands() (hour, minute float64, ok bool)
}

// Compile-time interface implementation check.
var _ livePage = (*enhance.Page)(nil)

// pageStatus is the JSON body of GET /status.
type pageStatus struct {
	ImagesLoaded  int      `json:"imagesLoaded"`
	ImagesPending int      `json:"imagesPending"`
	Clock         *clockUI `json:"clock,omitempty"`
}

// clockUI holds the hand angles in degrees.
type clockUI struct {
	Hour   float64 `json:"hour"`
	Minute float64 `json:"minute"`
}

// runServeCmd executes the serve command and returns an exit code.
func runServeCmd(args []string, env *Environment) int {
	flags, positional, err := parseServeFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	log := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	defer func() { _ = log.Sync() }()
	warnUnknownEnvVars(env.Stderr, env.Environ())

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runServe(ctx, positional, flags, env, log); err != nil {
		fmt.Fprintln(env.Stderr, formatError(err, flags.common.config))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runServe loads one page and serves its live snapshot until ctx is done.
func runServe(ctx context.Context, positionalArgs []string, flags *serveFlags, env *Environment, log *zap.Logger) error {
	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if err := mergePageFlags(&flags.page, cfg); err != nil {
		return err
	}
	if flags.addr != "" {
		cfg.Serve.Addr = flags.addr
	}
	if flags.watch {
		cfg.Serve.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if len(positionalArgs) == 0 {
		return ErrNoInput
	}
	path := positionalArgs[0]
	if err := validateHTMLExtension(path); err != nil {
		return err
	}

	opts, err := buildOptions(cfg, log)
	if err != nil {
		return err
	}
	if cfg.Images.BaseDir == "" {
		opts = append(opts, enhance.WithImages(enhance.Images{BaseDir: filepath.Dir(path)}))
	}

	enh, err := enhance.NewEnhancer(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = enh.Close() }()

	load := func(ctx context.Context) (closablePage, error) {
		f, err := os.Open(path) // #nosec G304 -- user-provided page
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadPage, err)
		}
		defer func() { _ = f.Close() }()
		return enh.Load(ctx, f)
	}

	page, err := load(ctx)
	if err != nil {
		return err
	}
	slot := newPageSlot(page)
	defer slot.Close()
	metrics := newServeMetrics(slot)

	var hub *reloadHub
	if cfg.Serve.Watch {
		hub = newReloadHub(log)
		defer hub.Close()

		watcher, err := newPageWatcher(path, reloadDebounce, clockwork.NewRealClock(), func() {
			reloadPage(ctx, slot, load, metrics, hub, log)
		}, log)
		if err != nil {
			return err
		}
		watching := make(chan struct{})
		go func() {
			defer close(watching)
			watcher.Run(ctx)
		}()
		// The slot closes only after the last reload has swapped in.
		defer func() {
			_ = watcher.Close()
			<-watching
		}()
	}

	return serve(ctx, newServer(cfg.Serve.Addr, slot, metrics, hub, log), log)
}

// newServer creates the preview server for page. A nil hub serves
// without live reload.
func newServer(addr string, page livePage, metrics *serveMetrics, hub *reloadHub, log *zap.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           newRouter(page, metrics, hub, log),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// newRouter configures the preview routes.
func newRouter(page livePage, metrics *serveMetrics, hub *reloadHub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  zap.NewStdLog(log.Named("http")),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	// Websocket connections outlive the request timeout.
	if hub != nil {
		r.Method(http.MethodGet, "/ws", hub)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Get("/", handlePage(page, metrics, hub != nil))
		r.Get("/status", handleStatus(page))
		r.Get("/health", handleHealth)
		r.Method(http.MethodGet, "/metrics", metrics.handler())
	})
	return r
}

// serve runs srv until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("serving page", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func handlePage(page livePage, metrics *serveMetrics, liveReload bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		html, err := page.HTML()
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.snapshotServed()
		if liveReload {
			html = injectReloadScript(html)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	}
}

func handleStatus(page livePage) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := pageStatus{
			ImagesLoaded:  page.ImagesLoaded(),
			ImagesPending: page.ImagesPending(),
		}
		if hour, minute, ok := page.ClockHands(); ok {
			status.Clock = &clockUI{Hour: hour, Minute: minute}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
