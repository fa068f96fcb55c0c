package core

import (
	"errors"
	"regexp"
	"strings"
)

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

const (
	UserEmployee UserType = "Employee"
	UserAdmin    UserType = "Admin"
)

type (
	Status   string
	UserType string

	Money struct {
		Cents int64
	}

	// Bill is an expense report as exchanged with the store. JSON names follow
	// the remote API.
	Bill struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Type         string `json:"type"` // Expense category
		Name         string `json:"name"`
		Amount       Money  `json:"amount"`
		Date         string `json:"date"` // YYYY-MM-DD
		VAT          string `json:"vat"`
		Pct          int    `json:"pct"`
		Commentary   string `json:"commentary"`
		FileURL      string `json:"fileUrl"`
		FileName     string `json:"fileName"`
		Status       Status `json:"status"`
		CommentAdmin string `json:"commentAdmin"`
	}

	// Session identifies the connected user. It is persisted client-side under
	// the "user" key and handed to every container explicitly.
	Session struct {
		Type  UserType `json:"type"`
		Email string   `json:"email"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidStatus = errors.New("invalid status")
	ErrMissingDate   = errors.New("missing date")
	ErrMissingAmount = errors.New("missing amount")
	ErrMissingPct    = errors.New("missing percentage")
	ErrInvalidPct    = errors.New("invalid percentage")
	ErrEmptyEmail    = errors.New("empty email")
)

var datePattern = regexp.MustCompile(`^(19|20)\d\d-(0[1-9]|1[012])-(0[1-9]|[12][0-9]|3[01])$`)

// ExpenseTypes lists the categories offered by the new bill form.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// IsCalendarDate reports whether s is a zero-padded YYYY-MM-DD date. Only
// hyphens are accepted so that dates sort as strings.
func IsCalendarDate(s string) bool {
	return datePattern.MatchString(s)
}

func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused:
		return nil
	default:
		return ErrInvalidStatus
	}
}

func (s Session) IsEmployee() bool {
	return s.Type == UserEmployee
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.Email) == "" {
		return ErrEmptyEmail
	}
	switch s.Type {
	case UserEmployee, UserAdmin:
		return nil
	default:
		return errors.New("invalid user type")
	}
}

func (b Bill) Validate() error {
	if b.Date != "" && !IsCalendarDate(b.Date) {
		return ErrInvalidDate
	}
	if b.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if b.Pct < 0 || b.Pct > 100 {
		return ErrInvalidPct
	}
	if strings.TrimSpace(b.Email) == "" {
		return ErrEmptyEmail
	}
	if len(b.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if len(b.Commentary) > 1000 {
		return errors.New("commentary too long (max 1000 characters)")
	}
	return b.Status.Validate()
}
