package middleware

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"request-rate-service/httperrors"
	"request-rate-service/request"
)

type HttpError interface {
	error
	StatusCode() int
	WriteError(w http.ResponseWriter) error
}

func ErrorHandler(logger log.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			err := next.Handle(ctx)
			if err == nil {
				return nil
			}

			var httpErr HttpError
			if !errors.As(err, &httpErr) {
				httpErr = httperrors.New(http.StatusInternalServerError, "internal service error", err)
			}

			logger.Error(ctx.Context(), err,
				log.String("endpoint", ctx.Endpoint()),
				log.Int("statusCode", httpErr.StatusCode()),
			)
			return httpErr.WriteError(ctx.ResponseWriter())
		})
	}
}
