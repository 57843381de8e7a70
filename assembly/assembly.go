package assembly

import (
	"context"
	stdhttp "net/http"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/app"
	"github.com/txix-open/isp-kit/http"
	"github.com/txix-open/isp-kit/log"
	"request-rate-service/conf"
	"request-rate-service/presenter"
	"request-rate-service/ticker"
)

const (
	ModuleName = "request-rate-service"
)

type Assembly struct {
	logger   log.Logger
	config   conf.Local
	server   *http.Server
	redisCli redis.UniversalClient
	redisPub *presenter.Redis
	locator  Config
}

func New(application *app.Application, version string) (*Assembly, error) {
	localConfig := conf.Local{}
	err := application.Config().Read(&localConfig)
	if err != nil {
		return nil, errors.WithMessage(err, "read local config")
	}
	err = localConfig.Validate()
	if err != nil {
		return nil, errors.WithMessage(err, "invalid local config")
	}

	logger := application.Logger()
	logger.SetLevel(localConfig.Logging.LogLevel)

	a := &Assembly{
		logger: logger,
		config: localConfig,
		server: http.NewServer(logger),
	}

	presenters := make([]ticker.Presenter, 0)
	if localConfig.Redis != nil {
		a.redisCli = redisClient(*localConfig.Redis)
		a.redisPub = presenter.NewRedis(
			a.redisCli,
			localConfig.Redis.GetChannel(),
			localConfig.Redis.GetPublishTimeout(),
			logger,
		)
		presenters = append(presenters, a.redisPub)
	}

	a.locator = NewLocator(logger, ModuleName, version, nil).Config(localConfig, presenters...)
	a.server.Upgrade(a.locator.Handler)

	return a, nil
}

func (a *Assembly) Runners() []app.Runner {
	return []app.Runner{
		a.httpRunner(),
		app.RunnerFunc(func(ctx context.Context) error {
			return a.locator.Ticker.Run(ctx)
		}),
	}
}

func (a *Assembly) Closers() []app.Closer {
	return []app.Closer{
		app.CloserFunc(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), a.config.Http.GetShutdownTimeout())
			defer cancel()
			return a.server.Shutdown(ctx)
		}),
		a.locator.Board,
		a.locator.Ticker,
		app.CloserFunc(func() error {
			if a.redisPub != nil {
				_ = a.redisPub.Close()
			}
			if a.redisCli != nil {
				return a.redisCli.Close()
			}
			return nil
		}),
	}
}

func (a *Assembly) httpRunner() app.Runner {
	return app.RunnerFunc(func(ctx context.Context) error {
		address := a.config.Http.GetAddress()
		a.logger.Info(ctx, "http server starting", log.String("address", address))
		err := a.server.ListenAndServe(address)
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return errors.WithMessagef(err, "serve http on %s", address)
		}
		return nil
	})
}

func redisClient(config conf.Redis) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Username: config.Username,
		Password: config.Password,
	})
}
