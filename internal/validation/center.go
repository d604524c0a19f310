package validation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/fitness-center-listings/internal/model"
)

// Messages returned to clients.
const (
	MsgRequired      = "this field is required."
	MsgBlank         = "this field may not be blank."
	MsgNameTooLong   = "ensure this field has no more than 100 characters."
	MsgNameTaken     = "fitness center with this name already exists."
	MsgMinFee        = "must be greater than or equal to 500"
	MsgMinSessions   = "must be greater than or equal to 4"
	MsgFutureDate    = "cannot be in future"
	MsgDateFormat    = "date has wrong format. use YYYY-MM-DD."
	MsgNegative      = "must be a non-negative integer."
	msgInvalidChoice = "%q is not a valid choice."
)

const (
	minMonthlyFee    = 500
	minTotalSessions = 4
	maxNameLen       = 100
)

// CenterInput is the writable part of a fitness center as a client sends
// it.  A nil field was absent from the request body.
type CenterInput struct {
	Name            *string `json:"name"`
	Address         *string `json:"address"`
	MonthlyFee      *int64  `json:"monthly_fee"`
	TotalSessions   *int64  `json:"total_sessions"`
	Category        *string `json:"category"`
	Facilities      *string `json:"facilities"`
	IsVerified      *bool   `json:"is_verified"`
	EstablishedDate *string `json:"established_date"`
}

// NameChecker answers whether a center other than excludeID already uses
// name.  The center stores satisfy it.
type NameChecker interface {
	NameExists(ctx context.Context, name string, excludeID uint64) (bool, error)
}

// Validator checks CenterInput against the business rules.  Now supplies
// "today" for the established_date rule and defaults to time.Now.
type Validator struct {
	Names NameChecker
	Now   func() time.Time
}

func NewValidator(names NameChecker) *Validator {
	return &Validator{Names: names, Now: time.Now}
}

// ValidateCenter merges in onto target and checks the result.
//
// target is nil on create, in which case the model defaults apply.  When
// partial is true only the fields present in in are checked; otherwise the
// fields without a default are required.  On success the merged record is
// returned and target is left untouched.  A rule violation yields an Errors
// value; any other error comes from the NameChecker.
func (v *Validator) ValidateCenter(ctx context.Context, in CenterInput, target *model.FitnessCenter, partial bool) (*model.FitnessCenter, error) {
	out := model.FitnessCenter{Category: model.CategoryGym}
	if target != nil {
		out = *target
	}
	errs := Errors{}

	required := func(field string, present bool) bool {
		if !present && !partial {
			errs.Add(field, MsgRequired)
		}
		return present
	}

	if required("name", in.Name != nil) {
		name := strings.TrimSpace(*in.Name)
		switch {
		case name == "":
			errs.Add("name", MsgBlank)
		case utf8.RuneCountInString(name) > maxNameLen:
			errs.Add("name", MsgNameTooLong)
		default:
			out.Name = name
		}
	}

	if required("address", in.Address != nil) {
		addr := strings.TrimSpace(*in.Address)
		if addr == "" {
			errs.Add("address", MsgBlank)
		} else {
			out.Address = addr
		}
	}

	if required("monthly_fee", in.MonthlyFee != nil) {
		switch fee := *in.MonthlyFee; {
		case fee < 0:
			errs.Add("monthly_fee", MsgNegative)
		case fee < minMonthlyFee:
			errs.Add("monthly_fee", MsgMinFee)
		default:
			out.MonthlyFee = fee
		}
	}

	if required("total_sessions", in.TotalSessions != nil) {
		switch n := *in.TotalSessions; {
		case n < 0:
			errs.Add("total_sessions", MsgNegative)
		case n < minTotalSessions:
			errs.Add("total_sessions", MsgMinSessions)
		default:
			out.TotalSessions = n
		}
	}

	if in.Category != nil {
		cat, err := model.ParseCategory(*in.Category)
		if err != nil {
			errs.Add("category", fmt.Sprintf(msgInvalidChoice, *in.Category))
		} else {
			out.Category = cat
		}
	}

	if required("facilities", in.Facilities != nil) {
		facilities := strings.TrimSpace(*in.Facilities)
		if facilities == "" {
			errs.Add("facilities", MsgBlank)
		} else {
			out.Facilities = facilities
		}
	}

	if in.IsVerified != nil {
		out.IsVerified = *in.IsVerified
	}

	if required("established_date", in.EstablishedDate != nil) {
		d, err := time.Parse(model.DateLayout, strings.TrimSpace(*in.EstablishedDate))
		switch {
		case err != nil:
			errs.Add("established_date", MsgDateFormat)
		case d.After(v.today()):
			errs.Add("established_date", MsgFutureDate)
		default:
			out.EstablishedDate = d
		}
	}

	// uniqueness only matters for a name that is otherwise acceptable
	if in.Name != nil && !errs.Has("name") && v.Names != nil {
		var self uint64
		if target != nil {
			self = target.ID
		}
		taken, err := v.Names.NameExists(ctx, out.Name, self)
		if err != nil {
			return nil, fmt.Errorf("check name: %w", err)
		}
		if taken {
			errs.Add("name", MsgNameTaken)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &out, nil
}

func (v *Validator) today() time.Time {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	y, m, d := now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
