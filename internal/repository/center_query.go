package repository

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/iliyamo/fitness-center-listings/internal/model"
)

// CenterQuery defines the filters and ordering for listing fitness centers.
// Nil or empty fields disable their filter; all enabled filters must hold.
type CenterQuery struct {
	MinFee     *int64
	MaxFee     *int64
	Facilities string
	IsVerified *bool
	Category   *model.Category
	Ordering   Ordering
}

// Ordering selects a single sort field.  The zero value keeps insertion
// order.
type Ordering struct {
	Field string
	Desc  bool
}

// orderingColumns maps public field names to their SQL columns.
var orderingColumns = map[string]string{
	"id":               "id",
	"name":             "name",
	"address":          "address",
	"monthly_fee":      "monthly_fee",
	"total_sessions":   "total_sessions",
	"category":         "category",
	"facilities":       "facilities",
	"owner":            "owner_id",
	"is_verified":      "is_verified",
	"established_date": "established_date",
	"created_at":       "created_at",
	"updated_at":       "updated_at",
}

// ParseOrdering parses an ordering parameter such as "monthly_fee" or
// "-established_date".  An empty string yields the zero Ordering.
func ParseOrdering(raw string) (Ordering, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ordering{}, nil
	}
	o := Ordering{Field: raw}
	if strings.HasPrefix(raw, "-") {
		o = Ordering{Field: raw[1:], Desc: true}
	}
	if _, ok := orderingColumns[o.Field]; !ok {
		return Ordering{}, fmt.Errorf("%w: %q", ErrInvalidOrdering, o.Field)
	}
	return o, nil
}

// whereClause renders the enabled filters as a parameterised SQL condition.
// It returns an empty string when no filter is enabled.
func (q CenterQuery) whereClause() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.MinFee != nil {
		conds = append(conds, "monthly_fee >= ?")
		args = append(args, *q.MinFee)
	}
	if q.MaxFee != nil {
		conds = append(conds, "monthly_fee <= ?")
		args = append(args, *q.MaxFee)
	}
	if q.Facilities != "" {
		conds = append(conds, "LOWER(facilities) LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(q.Facilities))+"%")
	}
	if q.IsVerified != nil {
		conds = append(conds, "is_verified = ?")
		args = append(args, *q.IsVerified)
	}
	if q.Category != nil {
		conds = append(conds, "category = ?")
		args = append(args, string(*q.Category))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause always ends with the primary key so equal sort keys keep
// insertion order.
func (q CenterQuery) orderClause() string {
	col, ok := orderingColumns[q.Ordering.Field]
	if !ok {
		return " ORDER BY id ASC"
	}
	dir := "ASC"
	if q.Ordering.Desc {
		dir = "DESC"
	}
	if col == "id" {
		return " ORDER BY id " + dir
	}
	return " ORDER BY " + col + " " + dir + ", id ASC"
}

// Matches reports whether fc satisfies every enabled filter.  It is the
// in-process equivalent of whereClause.
func (q CenterQuery) Matches(fc *model.FitnessCenter) bool {
	if q.MinFee != nil && fc.MonthlyFee < *q.MinFee {
		return false
	}
	if q.MaxFee != nil && fc.MonthlyFee > *q.MaxFee {
		return false
	}
	if q.Facilities != "" && !strings.Contains(strings.ToLower(fc.Facilities), strings.ToLower(q.Facilities)) {
		return false
	}
	if q.IsVerified != nil && fc.IsVerified != *q.IsVerified {
		return false
	}
	if q.Category != nil && fc.Category != *q.Category {
		return false
	}
	return true
}

// Less reports whether a sorts before b.  It is the in-process equivalent
// of orderClause.
func (q CenterQuery) Less(a, b *model.FitnessCenter) bool {
	c := compareField(q.Ordering.Field, a, b)
	if q.Ordering.Desc {
		c = -c
	}
	if c != 0 {
		return c < 0
	}
	if q.Ordering.Field == "id" && q.Ordering.Desc {
		return a.ID > b.ID
	}
	return a.ID < b.ID
}

func compareField(field string, a, b *model.FitnessCenter) int {
	switch field {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "address":
		return strings.Compare(a.Address, b.Address)
	case "monthly_fee":
		return cmp.Compare(a.MonthlyFee, b.MonthlyFee)
	case "total_sessions":
		return cmp.Compare(a.TotalSessions, b.TotalSessions)
	case "category":
		return strings.Compare(string(a.Category), string(b.Category))
	case "facilities":
		return strings.Compare(a.Facilities, b.Facilities)
	case "owner":
		return cmp.Compare(a.OwnerID, b.OwnerID)
	case "is_verified":
		return cmp.Compare(boolRank(a.IsVerified), boolRank(b.IsVerified))
	case "established_date":
		return a.EstablishedDate.Compare(b.EstablishedDate)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// escapeLike makes user input literal inside a LIKE pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
