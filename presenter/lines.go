package presenter

import (
	"request-rate-service/domain"
)

// Lines adapts a callback that only wants the rendered text.
type Lines func(globalLine string, rankingText string)

func (f Lines) OnStatsUpdated(stats domain.Stats) {
	f(stats.GlobalLine(), stats.RankingText())
}
