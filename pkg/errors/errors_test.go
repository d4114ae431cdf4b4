package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidDataset, "duplicate node id: %s", "r1")

	if err.Code != ErrCodeInvalidDataset {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidDataset)
	}
	if err.Message != "duplicate node id: r1" {
		t.Errorf("Message = %v, want %v", err.Message, "duplicate node id: r1")
	}

	expected := "INVALID_DATASET: duplicate node id: r1"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeStorage, cause, "save layout")

	if err.Code != ErrCodeStorage {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStorage)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if err.Error() != "STORAGE_ERROR: save layout: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput, true},
		{"non-matching code", New(ErrCodeInvalidInput, "test"), ErrCodeStorage, false},
		{"wrapped error", Wrap(ErrCodeStorage, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeStorage, true},
		{"fmt wrapped", wrapf(New(ErrCodeChartNotFound, "x")), ErrCodeChartNotFound, true},
		{"non-Error type", errors.New("plain error"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func wrapf(err error) error {
	return &wrapper{err}
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "context: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeUnknownEvent, "test"), ErrCodeUnknownEvent},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "friendly message")); got != "friendly message" {
		t.Errorf("UserMessage() = %q, want %q", got, "friendly message")
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain error")
	}
}

func TestClassifiers(t *testing.T) {
	if !IsNotFound(New(ErrCodeChartNotFound, "c")) {
		t.Error("IsNotFound(CHART_NOT_FOUND) = false")
	}
	if IsNotFound(New(ErrCodeInvalidInput, "c")) {
		t.Error("IsNotFound(INVALID_INPUT) = true")
	}
	if !IsInvalid(New(ErrCodeUnknownEvent, "e")) {
		t.Error("IsInvalid(UNKNOWN_EVENT) = false")
	}
	if IsInvalid(errors.New("plain")) {
		t.Error("IsInvalid(plain) = true")
	}
}
