package core

import (
	"errors"
	"strings"
)

var (
	ErrUnauthorized        = errors.New("no authenticated user")
	ErrNotFound            = errors.New("entity not found")
	ErrForbidden           = errors.New("entity belongs to another user")
	ErrEntryAlreadyStopped = errors.New("time entry is already stopped")

	ErrEmptyName          = errors.New("empty name")
	ErrNameTooLong        = errors.New("name too long (max 200 characters)")
	ErrDescriptionTooLong = errors.New("description too long (max 500 characters)")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDateRange   = errors.New("start date must not be after end date")
)

type (
	// Client is a billable customer owned by a single user. Clients are
	// soft-deleted by flipping IsActive, never removed.
	Client struct {
		ID          string `json:"id"`
		UserID      string `json:"userId"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		IsActive    bool   `json:"isActive"`
	}

	// Project belongs to a Client owned by the same user.
	Project struct {
		ID          string `json:"id"`
		UserID      string `json:"userId"`
		ClientID    string `json:"clientId"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		IsActive    bool   `json:"isActive"`
	}

	// TimeEntry is a single tracked interval of work against one
	// client+project. EndTime and Duration are nil while the entry is
	// running; both are set together when the entry stops, and Duration is
	// always exactly EndTime-StartTime. Date is the UTC calendar day of
	// StartTime, fixed at creation and never recomputed.
	TimeEntry struct {
		ID          string `json:"id"`
		UserID      string `json:"userId"`
		ClientID    string `json:"clientId"`
		ProjectID   string `json:"projectId"`
		StartTime   int64  `json:"startTime"`
		EndTime     *int64 `json:"endTime,omitempty"`
		Duration    *int64 `json:"duration,omitempty"`
		Description string `json:"description,omitempty"`
		Date        string `json:"date"`
	}
)

// Running reports whether the entry is still open.
func (e TimeEntry) Running() bool {
	return e.EndTime == nil
}

func validateName(name string) error {
	if len(strings.TrimSpace(name)) == 0 {
		return ErrEmptyName
	}
	if len(name) > 200 {
		return ErrNameTooLong
	}
	return nil
}

func validateDescription(desc string) error {
	if len(desc) > 500 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (c Client) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	return validateDescription(c.Description)
}

func (p Project) Validate() error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	return validateDescription(p.Description)
}

// ValidateEntryDescription checks a time entry description edit.
func ValidateEntryDescription(desc string) error {
	return validateDescription(desc)
}
