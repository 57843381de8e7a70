package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrTickerClosed = errors.New("ticker closed")
)
