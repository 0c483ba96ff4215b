package domain

import "errors"

var (
	ErrNotConnected  = errors.New("socket is not connected")
	ErrInvalidTarget = errors.New("invalid chat target")
	ErrTransport     = errors.New("transport error")
	ErrHistoryFetch  = errors.New("history fetch failed")
	ErrSessionClosed = errors.New("session is closed")
	ErrEmptyMessage  = errors.New("empty message")
	ErrDuplicateID   = errors.New("duplicate message id")
	ErrAlreadyOpen   = errors.New("session already open")
)
