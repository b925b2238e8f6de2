package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownStatus is returned when a status string is not one of the five
// known WBS statuses.
var ErrUnknownStatus = errors.New("unknown status")

// Status is shared by phases, groups, items and tasks.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusOnHold     Status = "ON_HOLD"
	StatusCancelled  Status = "CANCELLED"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{
	StatusNotStarted,
	StatusInProgress,
	StatusCompleted,
	StatusOnHold,
	StatusCancelled,
}

// ParseStatus converts a raw backend value into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

func (s Status) IsCompleted() bool {
	return s == StatusCompleted
}

// ColorToken names the display color of a status badge. Renderers map the
// token onto their own palette.
type ColorToken string

const (
	ColorGray   ColorToken = "gray"
	ColorBlue   ColorToken = "blue"
	ColorGreen  ColorToken = "green"
	ColorYellow ColorToken = "yellow"
	ColorRed    ColorToken = "red"
)

// Color returns the badge color for s. It panics on a status outside the
// enum; values are validated by ParseStatus before they reach the model.
func (s Status) Color() ColorToken {
	switch s {
	case StatusNotStarted:
		return ColorGray
	case StatusInProgress:
		return ColorBlue
	case StatusCompleted:
		return ColorGreen
	case StatusOnHold:
		return ColorYellow
	case StatusCancelled:
		return ColorRed
	}
	panic(fmt.Sprintf("domain: no color for status %q", string(s)))
}

// Label returns the localized display label for s. Like Color, it panics on
// a status outside the enum.
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "시작 전"
	case StatusInProgress:
		return "진행 중"
	case StatusCompleted:
		return "완료"
	case StatusOnHold:
		return "보류"
	case StatusCancelled:
		return "취소"
	}
	panic(fmt.Sprintf("domain: no label for status %q", string(s)))
}
