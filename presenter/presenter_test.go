package presenter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/test"
	"request-rate-service/domain"
	"request-rate-service/presenter"
)

func sampleStats() domain.Stats {
	return domain.Stats{
		Current: 5,
		Peak:    5,
		Ranking: []domain.RankingEntry{
			{Rank: 1, Address: "1.1.1.1", DisplayName: "Alice", Current: 3, Peak: 3},
			{Rank: 2, Address: "2.2.2.2", DisplayName: "2.2.2.2", Current: 2, Peak: 2},
		},
	}
}

func TestLines(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	var global, ranking string
	p := presenter.Lines(func(globalLine string, rankingText string) {
		global = globalLine
		ranking = rankingText
	})
	p.OnStatsUpdated(sampleStats())

	require.EqualValues("Per second : 5 (max=5)", global)
	require.EqualValues("1. Alice : 3 (max=3)\n2. 2.2.2.2 : 2 (max=2)", ranking)
}

func TestLog(t *testing.T) {
	t.Parallel()
	test, _ := test.New(t)

	p := presenter.NewLog(test.Logger())
	p.OnStatsUpdated(sampleStats())
	p.OnStatsUpdated(sampleStats())
	p.OnStatsUpdated(domain.Stats{})
}

func TestBoard(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)

	board := presenter.NewBoard(test.Logger())
	view := domain.StatsView{}
	require.NoError(json.Unmarshal(board.Last(), &view))
	require.EqualValues("Per second : 0 (max=0)", view.GlobalLine)
	require.Empty(view.Ranking)

	_, updates, cancel, err := board.Subscribe()
	require.NoError(err)
	require.EqualValues(1, board.Subscribers())

	board.OnStatsUpdated(sampleStats())
	select {
	case data := <-updates:
		require.EqualValues(board.Last(), data)
	case <-time.After(time.Second):
		require.Fail("update wasn't delivered")
	}

	require.NoError(json.Unmarshal(board.Last(), &view))
	require.EqualValues("Per second : 5 (max=5)", view.GlobalLine)
	require.EqualValues("1. Alice : 3 (max=3)\n2. 2.2.2.2 : 2 (max=2)", view.RankingText)
	require.Len(view.Ranking, 2)
	require.EqualValues("1.1.1.1", view.Ranking[0].Address)

	// slow subscriber must not block the publisher
	for i := 0; i < 100; i++ {
		board.OnStatsUpdated(sampleStats())
	}

	cancel()
	cancel()
	require.EqualValues(0, board.Subscribers())

	_, updates, _, err = board.Subscribe()
	require.NoError(err)
	require.NoError(board.Close())
	_, open := <-updates
	require.False(open)

	_, _, _, err = board.Subscribe()
	require.Error(err)
}

type publisherMock struct {
	lock     sync.Mutex
	channels []string
	messages [][]byte
	err      error
	calls    chan struct{}
}

func (p *publisherMock) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	p.lock.Lock()
	p.channels = append(p.channels, channel)
	p.messages = append(p.messages, message.([]byte))
	p.lock.Unlock()
	p.calls <- struct{}{}
	return redis.NewIntResult(1, p.err)
}

func TestRedis(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)

	cli := &publisherMock{calls: make(chan struct{}, 16)}
	p := presenter.NewRedis(cli, "stats", time.Second, test.Logger())

	p.OnStatsUpdated(sampleStats())
	select {
	case <-cli.calls:
	case <-time.After(time.Second):
		require.Fail("stats weren't published")
	}
	require.NoError(p.Close())
	require.NoError(p.Close())

	cli.lock.Lock()
	defer cli.lock.Unlock()
	require.EqualValues("stats", cli.channels[0])
	view := domain.StatsView{}
	require.NoError(json.Unmarshal(cli.messages[0], &view))
	require.EqualValues("Per second : 5 (max=5)", view.GlobalLine)
	require.EqualValues(5, view.Peak)
}

func TestRedisPublishError(t *testing.T) {
	t.Parallel()
	test, require := test.New(t)

	cli := &publisherMock{calls: make(chan struct{}, 16), err: errors.New("connection refused")}
	p := presenter.NewRedis(cli, "stats", time.Second, test.Logger())

	for i := 0; i < 3; i++ {
		p.OnStatsUpdated(sampleStats())
	}
	select {
	case <-cli.calls:
	case <-time.After(time.Second):
		require.Fail("publish wasn't attempted")
	}
	require.NoError(p.Close())
}
