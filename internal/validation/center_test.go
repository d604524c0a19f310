package validation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitness-center-listings/internal/model"
)

type fakeNames struct {
	taken map[string]uint64
	err   error
}

func (f fakeNames) NameExists(_ context.Context, name string, excludeID uint64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	id, ok := f.taken[name]
	return ok && id != excludeID, nil
}

func ptr[T any](v T) *T { return &v }

func newTestValidator() *Validator {
	return &Validator{
		Names: fakeNames{taken: map[string]uint64{"Power Gym": 1}},
		Now:   func() time.Time { return time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC) },
	}
}

func validInput() CenterInput {
	return CenterInput{
		Name:            ptr("Iron Temple"),
		Address:         ptr("789 Test Rd"),
		MonthlyFee:      ptr(int64(1000)),
		TotalSessions:   ptr(int64(8)),
		Category:        ptr("CROSSFIT"),
		Facilities:      ptr("Rigs,Rowers"),
		EstablishedDate: ptr("2026-10-17"),
	}
}

func TestValidateCenter_Create(t *testing.T) {
	v := newTestValidator()

	fc, err := v.ValidateCenter(context.Background(), validInput(), nil, false)
	require.NoError(t, err)
	assert.Equal(t, "Iron Temple", fc.Name)
	assert.Equal(t, model.CategoryCrossfit, fc.Category)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), fc.EstablishedDate, "today is allowed")
	assert.False(t, fc.IsVerified)
}

func TestValidateCenter_Defaults(t *testing.T) {
	v := newTestValidator()
	in := validInput()
	in.Category = nil

	fc, err := v.ValidateCenter(context.Background(), in, nil, false)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryGym, fc.Category)
}

func TestValidateCenter_CollectsAllRuleFailures(t *testing.T) {
	v := newTestValidator()
	in := validInput()
	in.MonthlyFee = ptr(int64(499))
	in.TotalSessions = ptr(int64(3))
	in.EstablishedDate = ptr("2026-10-18")

	_, err := v.ValidateCenter(context.Background(), in, nil, false)
	var verrs Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"established_date", "monthly_fee", "total_sessions"}, verrs.Fields())
	assert.Equal(t, []string{MsgMinFee}, verrs["monthly_fee"])
	assert.Equal(t, []string{MsgMinSessions}, verrs["total_sessions"])
	assert.Equal(t, []string{MsgFutureDate}, verrs["established_date"])
}

func TestValidateCenter_Boundaries(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(in *CenterInput)
		field   string
		message string
	}{
		{name: "fee at minimum", mutate: func(in *CenterInput) { in.MonthlyFee = ptr(int64(500)) }},
		{name: "sessions at minimum", mutate: func(in *CenterInput) { in.TotalSessions = ptr(int64(4)) }},
		{name: "negative fee", mutate: func(in *CenterInput) { in.MonthlyFee = ptr(int64(-1)) }, field: "monthly_fee", message: MsgNegative},
		{name: "negative sessions", mutate: func(in *CenterInput) { in.TotalSessions = ptr(int64(-4)) }, field: "total_sessions", message: MsgNegative},
		{name: "blank name", mutate: func(in *CenterInput) { in.Name = ptr("   ") }, field: "name", message: MsgBlank},
		{name: "long name", mutate: func(in *CenterInput) { in.Name = ptr(strings.Repeat("a", 101)) }, field: "name", message: MsgNameTooLong},
		{name: "name at limit", mutate: func(in *CenterInput) { in.Name = ptr(strings.Repeat("é", 100)) }},
		{name: "bad category", mutate: func(in *CenterInput) { in.Category = ptr("gym") }, field: "category", message: `"gym" is not a valid choice.`},
		{name: "bad date", mutate: func(in *CenterInput) { in.EstablishedDate = ptr("17/10/2026") }, field: "established_date", message: MsgDateFormat},
		{name: "blank address", mutate: func(in *CenterInput) { in.Address = ptr("") }, field: "address", message: MsgBlank},
		{name: "missing facilities", mutate: func(in *CenterInput) { in.Facilities = nil }, field: "facilities", message: MsgRequired},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := newTestValidator().ValidateCenter(context.Background(), in, nil, false)
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			var verrs Errors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, []string{tc.message}, verrs[tc.field])
		})
	}
}

func TestValidateCenter_RequiredOnFullWrite(t *testing.T) {
	_, err := newTestValidator().ValidateCenter(context.Background(), CenterInput{}, nil, false)
	var verrs Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t,
		[]string{"address", "established_date", "facilities", "monthly_fee", "name", "total_sessions"},
		verrs.Fields())
	for _, f := range verrs.Fields() {
		assert.Equal(t, []string{MsgRequired}, verrs[f])
	}
}

func TestValidateCenter_DuplicateName(t *testing.T) {
	v := newTestValidator()
	in := validInput()
	in.Name = ptr("Power Gym")

	_, err := v.ValidateCenter(context.Background(), in, nil, false)
	var verrs Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{MsgNameTaken}, verrs["name"])

	// the record that owns the name may keep it
	self := &model.FitnessCenter{ID: 1, Name: "Power Gym", OwnerID: 3}
	fc, err := v.ValidateCenter(context.Background(), in, self, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), fc.ID)
	assert.Equal(t, uint64(3), fc.OwnerID)
}

func TestValidateCenter_Partial(t *testing.T) {
	v := newTestValidator()
	target := &model.FitnessCenter{
		ID:              2,
		Name:            "Peace Yoga",
		Address:         "456 Wellness Ave",
		MonthlyFee:      1500,
		TotalSessions:   12,
		Category:        model.CategoryYoga,
		Facilities:      "Mats,Meditation Room",
		EstablishedDate: time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC),
	}

	fc, err := v.ValidateCenter(context.Background(), CenterInput{MonthlyFee: ptr(int64(1800))}, target, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), fc.MonthlyFee)
	assert.Equal(t, "Peace Yoga", fc.Name)
	assert.Equal(t, int64(1500), target.MonthlyFee, "target is not modified")

	_, err = v.ValidateCenter(context.Background(), CenterInput{TotalSessions: ptr(int64(2))}, target, true)
	var verrs Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"total_sessions"}, verrs.Fields())
}

func TestValidateCenter_NameCheckerFailure(t *testing.T) {
	boom := errors.New("connection refused")
	v := newTestValidator()
	v.Names = fakeNames{err: boom}

	_, err := v.ValidateCenter(context.Background(), validInput(), nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var verrs Errors
	assert.False(t, errors.As(err, &verrs))
}

func TestErrors_Error(t *testing.T) {
	errs := Errors{}
	errs.Add("total_sessions", MsgMinSessions)
	errs.Add("monthly_fee", MsgMinFee)

	assert.Equal(t,
		"validation failed: monthly_fee: must be greater than or equal to 500; total_sessions: must be greater than or equal to 4",
		errs.Error())
}
