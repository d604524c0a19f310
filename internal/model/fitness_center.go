package model

import (
	"errors"
	"time"
)

// DateLayout is the wire and storage format of established_date.
const DateLayout = "2006-01-02"

// Category is the closed set of activity types a fitness center can be
// listed under.  Values are upper-case and matched case-sensitively.
type Category string

const (
	CategoryGym      Category = "GYM"
	CategoryYoga     Category = "YOGA"
	CategoryCrossfit Category = "CROSSFIT"
	CategoryPilates  Category = "PILATES"
	CategorySwimming Category = "SWIMMING"
)

// Categories lists every valid Category in declaration order.
var Categories = []Category{
	CategoryGym,
	CategoryYoga,
	CategoryCrossfit,
	CategoryPilates,
	CategorySwimming,
}

// ErrInvalidCategory is returned by ParseCategory for values outside the enum.
var ErrInvalidCategory = errors.New("invalid category")

// ErrInvalidSessionCount is returned when price_per_session cannot be
// computed because total_sessions is zero or negative.
var ErrInvalidSessionCount = errors.New("total_sessions must be positive to compute price per session")

// ParseCategory returns the Category equal to s.  No case folding is applied.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// FitnessCenter mirrors a row of the `fitness_centers` table.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – globally unique display name.
//  Address         – free-text postal address.
//  MonthlyFee      – membership price per month, whole currency units.
//  TotalSessions   – sessions included per month.
//  Category        – activity type, defaults to GYM.
//  Facilities      – comma separated description, searchable by substring.
//  OwnerID         – users.id of the account that created the listing.
//  IsVerified      – set by staff once the listing has been checked.
//  EstablishedDate – opening date, never in the future for client writes.
//  CreatedAt       – timestamp when the row was created.
//  UpdatedAt       – timestamp of the last mutation.
type FitnessCenter struct {
	ID              uint64
	Name            string
	Address         string
	MonthlyFee      int64
	TotalSessions   int64
	Category        Category
	Facilities      string
	OwnerID         uint64
	IsVerified      bool
	EstablishedDate time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PricePerSession returns MonthlyFee / TotalSessions as a real quotient.
// Records written through the API always have at least four sessions, but
// rows inserted by other means may not, so a non-positive denominator is
// reported as ErrInvalidSessionCount instead of yielding Inf or NaN.
func (f *FitnessCenter) PricePerSession() (float64, error) {
	if f.TotalSessions <= 0 {
		return 0, ErrInvalidSessionCount
	}
	return float64(f.MonthlyFee) / float64(f.TotalSessions), nil
}
