package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/pkg/errors"
	"request-rate-service/httperrors"
	"request-rate-service/request"
)

func Recovery() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				err = httperrors.New(
					http.StatusInternalServerError,
					"internal service error",
					errors.Errorf("recovery: panic: %v\n%s", r, debug.Stack()),
				)
			}()
			return next.Handle(ctx)
		})
	}
}
