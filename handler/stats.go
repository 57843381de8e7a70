package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"request-rate-service/httperrors"
	"request-rate-service/request"
)

const (
	wsWriteTimeout = 5 * time.Second
)

type Board interface {
	Last() []byte
	Subscribe() (string, <-chan []byte, func(), error)
}

type Stats struct {
	board  Board
	logger log.Logger
}

func NewStats(board Board, logger log.Logger) Stats {
	return Stats{
		board:  board,
		logger: logger,
	}
}

func (h Stats) Handle(ctx *request.Context) error {
	return write(ctx.ResponseWriter(), http.StatusOK, jsonContentType, h.board.Last())
}

//nolint:gomnd
func (h Stats) Stream(ctx *request.Context) error {
	var resultError error
	upgrader := websocket.Upgrader{
		HandshakeTimeout: 5 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			resultError = httperrors.New(status, http.StatusText(status), errors.WithMessage(reason, "stats stream: upgrade"))
		},
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(ctx.ResponseWriter(), ctx.Request(), nil)
	if err != nil {
		if resultError != nil {
			return resultError
		}
		return errors.WithMessage(err, "stats stream: upgrade")
	}
	defer conn.Close()

	id, updates, cancel, err := h.board.Subscribe()
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		return nil
	}
	defer cancel()

	fields := []log.Field{
		log.String("subscriberId", id),
		log.String("sourceAddress", ctx.SourceAddress()),
	}
	h.logger.Debug(ctx.Context(), "stats stream: subscribed", fields...)
	defer h.logger.Debug(ctx.Context(), "stats stream: unsubscribed", fields...)

	go h.readUntilClosed(conn, cancel)

	err = h.send(conn, h.board.Last())
	if err != nil {
		return nil //nolint:nilerr
	}
	for data := range updates {
		err := h.send(conn, data)
		if err != nil {
			return nil //nolint:nilerr
		}
	}
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
		time.Now().Add(wsWriteTimeout),
	)
	return nil
}

func (h Stats) send(conn *websocket.Conn, data []byte) error {
	err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readUntilClosed drains client frames so close and ping frames are processed.
func (h Stats) readUntilClosed(conn *websocket.Conn, cancel func()) {
	defer cancel()
	// the server read timeout still applies to the hijacked connection
	_ = conn.SetReadDeadline(time.Time{})
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			return
		}
	}
}
