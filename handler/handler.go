package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"request-rate-service/domain"
	"request-rate-service/request"
)

const (
	textContentType = "text/plain; charset=utf-8"
	jsonContentType = "application/json"
)

type RequestHandler interface {
	HandleRequest(ctx context.Context, sourceAddress string, nameHint string) domain.Response
}

type StatusProvider interface {
	Text() string
}

type Greeting struct {
	service RequestHandler
}

func NewGreeting(service RequestHandler) Greeting {
	return Greeting{
		service: service,
	}
}

// Handle serves "/" and "/nom/{name}", the name variable is empty on "/".
func (h Greeting) Handle(ctx *request.Context) error {
	resp := h.service.HandleRequest(ctx.Context(), ctx.SourceAddress(), ctx.PathVar("name"))
	return write(ctx.ResponseWriter(), resp.StatusCode, textContentType, []byte(resp.Body))
}

type Status struct {
	provider StatusProvider
}

func NewStatus(provider StatusProvider) Status {
	return Status{
		provider: provider,
	}
}

func (h Status) Handle(ctx *request.Context) error {
	return write(ctx.ResponseWriter(), http.StatusOK, textContentType, []byte(h.provider.Text()))
}

func write(w http.ResponseWriter, statusCode int, contentType string, body []byte) error {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(statusCode)
	_, err := w.Write(body)
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.WithMessage(err, "write response body")
	}
	return nil
}
