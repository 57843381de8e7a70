package presenter

import (
	"context"
	"sync"

	"github.com/txix-open/isp-kit/log"
	"request-rate-service/domain"
)

// Log writes the scoreboard to the logger whenever it changes.
type Log struct {
	logger log.Logger

	lock     sync.Mutex
	lastText string
}

func NewLog(logger log.Logger) *Log {
	return &Log{
		logger: logger,
	}
}

func (p *Log) OnStatsUpdated(stats domain.Stats) {
	globalLine := stats.GlobalLine()
	rankingText := stats.RankingText()

	p.lock.Lock()
	changed := p.lastText != globalLine+rankingText
	p.lastText = globalLine + rankingText
	p.lock.Unlock()
	if !changed {
		return
	}

	p.logger.Debug(context.Background(), globalLine,
		log.Int("current", stats.Current),
		log.Int("peak", stats.Peak),
		log.Int("addresses", len(stats.Ranking)),
		log.String("ranking", rankingText),
	)
}
