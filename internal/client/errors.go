package client

import (
	"errors"
	"net/http"
	"strconv"
	"time"
)

var (
	ErrServiceUnavailable = errors.New("banking service unavailable")
)

// RemoteError - явный отказ сервиса, сообщение показывается пользователю как есть
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// RateLimitError - превышение числа запросов к сервису
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded"
}

func NewRateLimitError(headers http.Header) *RateLimitError {
	return &RateLimitError{
		RetryAfter: ParseRetryAfter(headers),
	}
}

func ParseRetryAfter(headers http.Header) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return time.Minute // default
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		return time.Until(t)
	}

	return time.Minute // fallback
}
