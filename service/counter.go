package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"request-rate-service/domain"
)

type Recorder interface {
	Record(sourceAddress string, now int64)
}

type NameDirectory interface {
	Upsert(sourceAddress string, name string) bool
	Resolve(sourceAddress string) string
}

type Counter struct {
	recorder Recorder
	names    NameDirectory
	now      func() time.Time
}

func NewCounter(recorder Recorder, names NameDirectory, now func() time.Time) Counter {
	if now == nil {
		now = time.Now
	}
	return Counter{
		recorder: recorder,
		names:    names,
		now:      now,
	}
}

// HandleRequest records the request and greets the caller.
// A non-blank nameHint becomes the display name of sourceAddress.
func (s Counter) HandleRequest(ctx context.Context, sourceAddress string, nameHint string) domain.Response {
	s.recorder.Record(sourceAddress, s.now().UnixMilli())
	if s.names != nil {
		s.names.Upsert(sourceAddress, nameHint)
	}

	return domain.Response{
		StatusCode: http.StatusOK,
		Body:       Greeting(s.displayName(sourceAddress)),
	}
}

func (s Counter) displayName(sourceAddress string) string {
	if s.names == nil {
		return sourceAddress
	}
	return s.names.Resolve(sourceAddress)
}

func Greeting(who string) string {
	return fmt.Sprintf("Salut %s !", who)
}
