package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// DefaultPct is applied when the percentage field is left blank.
const DefaultPct = 20

// BillForm holds the raw values posted by the new bill form.
type BillForm struct {
	Type       string `validate:"max=100"`
	Name       string `validate:"max=200"`
	Date       string `validate:"required,calendardate"`
	Amount     string `validate:"required"`
	VAT        string `validate:"omitempty,numeric"`
	Pct        string `validate:"required,number"`
	Commentary string `validate:"max=1000"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
			return IsCalendarDate(fl.Field().String())
		})
	})
	return validate
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f BillForm) Trimmed() BillForm {
	return BillForm{
		Type:       strings.TrimSpace(f.Type),
		Name:       strings.TrimSpace(f.Name),
		Date:       strings.TrimSpace(f.Date),
		Amount:     strings.TrimSpace(f.Amount),
		VAT:        strings.TrimSpace(f.VAT),
		Pct:        strings.TrimSpace(f.Pct),
		Commentary: strings.TrimSpace(f.Commentary),
	}
}

// Validate checks the required fields (date, amount, pct) and the field
// formats. Every problem found is reported; missing fields unwrap to
// ErrMissingDate, ErrMissingAmount and ErrMissingPct.
func (f BillForm) Validate() error {
	err := formValidator().Struct(f.Trimmed())
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	errs := make([]error, 0, len(ve))
	for _, fe := range ve {
		errs = append(errs, fieldError(fe))
	}
	return errors.Join(errs...)
}

// fieldError converts a single ValidationError into a sentinel or a
// human-readable message.
func fieldError(fe validator.FieldError) error {
	if fe.Tag() == "required" {
		switch fe.Field() {
		case "Date":
			return ErrMissingDate
		case "Amount":
			return ErrMissingAmount
		case "Pct":
			return ErrMissingPct
		}
	}
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "calendardate":
		return fmt.Errorf("%w: %s must be formatted YYYY-MM-DD", ErrInvalidDate, field)
	case "number":
		return fmt.Errorf("%w: %s must be a whole number", ErrInvalidPct, field)
	case "numeric":
		return fmt.Errorf("%s must be numeric", field)
	case "max":
		return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Errorf("%s failed validation (%s)", field, fe.Tag())
	}
}

// Bill builds the pending bill for the given owner and uploaded receipt.
// A blank amount becomes 0 and a blank percentage becomes DefaultPct.
func (f BillForm) Bill(email string, ref AttachmentRef) (Bill, error) {
	f = f.Trimmed()

	var amount Money
	if f.Amount != "" {
		cents, err := ParseDecimalToCents(f.Amount)
		if err != nil {
			return Bill{}, err
		}
		amount.Cents = cents
	}

	pct := DefaultPct
	if f.Pct != "" {
		p, err := strconv.Atoi(f.Pct)
		if err != nil {
			return Bill{}, ErrInvalidPct
		}
		pct = p
	}

	b := Bill{
		ID:         ref.Key,
		Email:      email,
		Type:       f.Type,
		Name:       f.Name,
		Amount:     amount,
		Date:       f.Date,
		VAT:        f.VAT,
		Pct:        pct,
		Commentary: f.Commentary,
		FileURL:    ref.FileURL,
		FileName:   ref.FileName,
		Status:     StatusPending,
	}
	if err := b.Validate(); err != nil {
		return Bill{}, err
	}
	return b, nil
}
