package assembly

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/txix-open/isp-kit/log"
	"request-rate-service/conf"
	"request-rate-service/handler"
	"request-rate-service/middleware"
	"request-rate-service/names"
	"request-rate-service/presenter"
	"request-rate-service/service"
	"request-rate-service/ticker"
	"request-rate-service/tracker"
)

type Locator struct {
	logger     log.Logger
	moduleName string
	version    string
	now        func() time.Time
}

func NewLocator(logger log.Logger, moduleName string, version string, now func() time.Time) Locator {
	if now == nil {
		now = time.Now
	}
	return Locator{
		logger:     logger,
		moduleName: moduleName,
		version:    version,
		now:        now,
	}
}

type Config struct {
	Handler http.Handler
	Tracker *tracker.Tracker
	Names   *names.Directory
	Board   *presenter.Board
	Ticker  *ticker.Ticker
}

func (l Locator) Config(cfg conf.Local, presenters ...ticker.Presenter) Config {
	directory := names.NewDirectory()
	rateTracker := tracker.New(cfg.Stats.GetWindow(), directory)
	counter := service.NewCounter(rateTracker, directory, l.now)
	status := service.NewStatus(l.moduleName, l.version)
	board := presenter.NewBoard(l.logger)

	presenters = append([]ticker.Presenter{board, presenter.NewLog(l.logger)}, presenters...)
	statsTicker := ticker.New(cfg.Stats.GetTickPeriod(), rateTracker, l.logger, l.now, presenters...)

	greetingHandler := handler.NewGreeting(counter)
	statusHandler := handler.NewStatus(status)
	statsHandler := handler.NewStats(board, l.logger)

	router := mux.NewRouter()
	l.route(router, cfg, "/", greetingHandler)
	l.route(router, cfg, "/nom/{name}", greetingHandler)
	l.route(router, cfg, "/status", statusHandler)
	l.route(router, cfg, "/stats", statsHandler)
	l.route(router, cfg, "/stats/ws", middleware.HandlerFunc(statsHandler.Stream))

	return Config{
		Handler: router,
		Tracker: rateTracker,
		Names:   directory,
		Board:   board,
		Ticker:  statsTicker,
	}
}

func (l Locator) route(router *mux.Router, cfg conf.Local, path string, root middleware.Handler) {
	handler := middleware.Chain(
		root,
		middleware.RequestId(),
		middleware.Logger(l.logger, cfg.Logging.RequestLogEnable),
		middleware.ErrorHandler(l.logger),
		middleware.Recovery(),
	)
	router.Handle(path, middleware.Entrypoint(path, handler, l.logger)).Methods(http.MethodGet)
}
