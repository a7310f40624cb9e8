package core

import "strings"

// allFilter is the selector value meaning "no restriction".
const allFilter = "all"

// BillFilter selects bills. A nil field places no restriction on that
// dimension. From and Until are inclusive calendar days.
type BillFilter struct {
	ConsumerName *string
	MealType     *MealType
	From         *Date
	Until        *Date
}

// ConsumerFilter selects consumers.
type ConsumerFilter struct {
	IsActive *bool
}

// NewBillFilter builds a filter from raw query values. Empty strings and
// "all" leave the dimension unrestricted.
func NewBillFilter(consumerName, mealType, startDate, endDate string) (BillFilter, error) {
	var f BillFilter
	if name := strings.TrimSpace(consumerName); name != "" && name != allFilter {
		f.ConsumerName = &name
	}
	if mt := strings.TrimSpace(mealType); mt != "" && !strings.EqualFold(mt, allFilter) {
		parsed, err := ParseMealType(mt)
		if err != nil {
			return BillFilter{}, err
		}
		f.MealType = &parsed
	}
	from, err := ParseOptionalDate(startDate)
	if err != nil {
		return BillFilter{}, err
	}
	until, err := ParseOptionalDate(endDate)
	if err != nil {
		return BillFilter{}, err
	}
	if from != nil && until != nil && from.After(until.Time) {
		return BillFilter{}, Validationf("startDate must not be after endDate")
	}
	f.From, f.Until = from, until
	return f, nil
}

// Matches reports whether b passes the filter. Used by stores without a
// query engine.
func (f BillFilter) Matches(b Bill) bool {
	if f.ConsumerName != nil && b.ConsumerName != *f.ConsumerName {
		return false
	}
	if f.MealType != nil && b.MealType != *f.MealType {
		return false
	}
	if f.From != nil && b.Date.Before(f.From.Time) {
		return false
	}
	if f.Until != nil && !b.Date.Before(f.Until.AddDays(1).Time) {
		return false
	}
	return true
}

func (f ConsumerFilter) Matches(c Consumer) bool {
	return f.IsActive == nil || c.IsActive == *f.IsActive
}
