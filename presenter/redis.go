package presenter

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
	"request-rate-service/domain"
)

type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Redis publishes every tick to a pub/sub channel from its own goroutine.
// Only the most recent pending stats are kept, older ones are replaced.
type Redis struct {
	cli            Publisher
	channel        string
	publishTimeout time.Duration
	logger         log.Logger

	pending chan domain.Stats
	close   chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewRedis(cli Publisher, channel string, publishTimeout time.Duration, logger log.Logger) *Redis {
	p := &Redis{
		cli:            cli,
		channel:        channel,
		publishTimeout: publishTimeout,
		logger:         logger,
		pending:        make(chan domain.Stats, 1),
		close:          make(chan struct{}),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Redis) OnStatsUpdated(stats domain.Stats) {
	for {
		select {
		case p.pending <- stats:
			return
		default:
		}
		select {
		case <-p.pending:
		default:
		}
	}
}

func (p *Redis) Close() error {
	p.once.Do(func() {
		close(p.close)
	})
	p.wg.Wait()
	return nil
}

func (p *Redis) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.close:
			return
		case stats := <-p.pending:
			err := p.publish(stats)
			if err != nil {
				p.logger.Error(context.Background(), err, log.String("channel", p.channel))
			}
		}
	}
}

func (p *Redis) publish(stats domain.Stats) error {
	data, err := json.Marshal(stats.View())
	if err != nil {
		return errors.WithMessage(err, "redis presenter: marshal stats")
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.publishTimeout)
	defer cancel()
	err = p.cli.Publish(ctx, p.channel, data).Err()
	if err != nil {
		return errors.WithMessagef(err, "redis presenter: publish to '%s'", p.channel)
	}
	return nil
}
