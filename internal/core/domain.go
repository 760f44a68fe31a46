package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Bills         Category = "bills"
	Shopping      Category = "shopping"
	Entertainment Category = "entertainment"
	Other         Category = "other"
)

type (
	// Category is the closed set of tags an expense can carry.
	Category string

	Expense struct {
		ID          int64
		Amount      int64 // smallest currency unit, never negative
		Category    Category
		Date        time.Time
		Description string // optional note
	}

	// UserProfile is the single owner of the expense collection.
	UserProfile struct {
		Name        string
		Avatar      string
		Salary      int64
		Budget      int64
		PaymentDate int // day of month, 1-28
	}

	// Settings is the editable part of a UserProfile.
	Settings struct {
		Salary      int64
		Budget      int64
		PaymentDate int
	}
)

const (
	MinPaymentDate = 1
	MaxPaymentDate = 28
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingAmount      = errors.New("missing amount")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrMissingCategory    = errors.New("missing category")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidPaymentDate = errors.New("invalid payment date")
)

var allCategories = []Category{Food, Transport, Bills, Shopping, Entertainment, Other}

// AllCategories returns the categories in display order.
func AllCategories() []Category {
	return append([]Category(nil), allCategories...)
}

// ParseCategory maps a raw string to a Category. Matching is case-insensitive.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", ErrMissingCategory
	}
	c := Category(s)
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func (c Category) Valid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the capitalised name used by the UI.
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Index returns the display position of c, or -1 when unknown.
func (c Category) Index() int {
	for i, known := range allCategories {
		if c == known {
			return i
		}
	}
	return -1
}

func (c Category) String() string {
	return string(c)
}

// SameAs reports whether both records share an identity. Expense equality is by ID.
func (e Expense) SameAs(other Expense) bool {
	return e.ID == other.ID
}

// DisplayNote returns the description, or the short date when none was given.
func (e Expense) DisplayNote() string {
	if strings.TrimSpace(e.Description) != "" {
		return e.Description
	}
	return e.Date.Format("Jan 2")
}

func (e Expense) Validate() error {
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	if e.Category == "" {
		return ErrMissingCategory
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (s Settings) Validate() error {
	if s.Salary < 0 || s.Budget < 0 {
		return ErrInvalidAmount
	}
	if s.PaymentDate < MinPaymentDate || s.PaymentDate > MaxPaymentDate {
		return ErrInvalidPaymentDate
	}
	return nil
}

// ClampPaymentDate keeps a payment day inside 1..28.
func ClampPaymentDate(day int) int {
	if day < MinPaymentDate {
		return MinPaymentDate
	}
	if day > MaxPaymentDate {
		return MaxPaymentDate
	}
	return day
}

// Apply copies editable settings onto the profile.
func (p *UserProfile) Apply(s Settings) {
	p.Salary = s.Salary
	p.Budget = s.Budget
	p.PaymentDate = s.PaymentDate
}

func (p UserProfile) Settings() Settings {
	return Settings{Salary: p.Salary, Budget: p.Budget, PaymentDate: p.PaymentDate}
}

// Initial returns the avatar fallback letter.
func (p UserProfile) Initial() string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ""
	}
	return strings.ToUpper(string([]rune(name)[:1]))
}
