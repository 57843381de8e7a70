package presenter

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
	"request-rate-service/domain"
)

const (
	subscriberBufferSize = 4
)

// Board keeps the latest stats and fans them out to live subscribers.
// Slow subscribers miss updates instead of delaying the ticker.
type Board struct {
	logger log.Logger
	last   atomic.Pointer[[]byte]

	lock        sync.Mutex
	closed      bool
	subscribers map[string]chan []byte
}

func NewBoard(logger log.Logger) *Board {
	b := &Board{
		logger:      logger,
		subscribers: make(map[string]chan []byte),
	}
	initial, _ := json.Marshal(domain.Stats{}.View())
	b.last.Store(&initial)
	return b
}

func (b *Board) OnStatsUpdated(stats domain.Stats) {
	data, err := json.Marshal(stats.View())
	if err != nil {
		b.logger.Error(context.Background(), errors.WithMessage(err, "board: marshal stats"))
		return
	}
	b.last.Store(&data)

	b.lock.Lock()
	defer b.lock.Unlock()
	for id, ch := range b.subscribers {
		select {
		case ch <- data:
		default:
			b.logger.Debug(context.Background(), "board: subscriber is too slow, update dropped", log.String("subscriberId", id))
		}
	}
}

// Last returns the JSON encoded latest stats.
func (b *Board) Last() []byte {
	return *b.last.Load()
}

// Subscribe registers a listener. The channel is closed by cancel or Close.
func (b *Board) Subscribe() (string, <-chan []byte, func(), error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.closed {
		return "", nil, nil, errors.New("board: closed")
	}

	id := uuid.NewString()
	ch := make(chan []byte, subscriberBufferSize)
	b.subscribers[id] = ch

	cancel := func() {
		b.lock.Lock()
		defer b.lock.Unlock()
		sub, ok := b.subscribers[id]
		if !ok {
			return
		}
		delete(b.subscribers, id)
		close(sub)
	}
	return id, ch, cancel, nil
}

func (b *Board) Subscribers() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.subscribers)
}

func (b *Board) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
	return nil
}
