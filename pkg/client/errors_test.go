package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   ErrorClass
	}{
		{statusCode: 400, expected: ErrorClassClient},
		{statusCode: 404, expected: ErrorClassClient},
		{statusCode: 429, expected: ErrorClassClient},
		{statusCode: 500, expected: ErrorClassServer},
		{statusCode: 503, expected: ErrorClassServer},
		{statusCode: 304, expected: ErrorClassUnexpected},
		{statusCode: 101, expected: ErrorClassUnexpected},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			if got := classifyStatus(tt.statusCode); got != tt.expected {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestFetchError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *FetchError
		expected string
	}{
		{
			name: "status error",
			err: &FetchError{
				URL:        "http://api.test/api/book/1",
				StatusCode: 404,
				Class:      ErrorClassClient,
				Err:        errors.New("404 Not Found"),
			},
			expected: "fetch http://api.test/api/book/1: client error (status 404)",
		},
		{
			name: "network error",
			err: &FetchError{
				URL:   "http://api.test/api/book/2",
				Class: ErrorClassNetwork,
				Err:   errors.New("connection refused"),
			},
			expected: "fetch http://api.test/api/book/2: network error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := fmt.Errorf("chunk 3: %w", &FetchError{Class: ErrorClassNetwork, Err: inner})

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped network error")
	}
	if !IsTransportFailure(err) {
		t.Error("IsTransportFailure should see through wrapping")
	}
	if IsTransportFailure(inner) {
		t.Error("plain errors are not transport failures")
	}
}
