package core

import (
	"strings"
	"time"
)

const (
	Breakfast MealType = "BREAKFAST"
	Lunch     MealType = "LUNCH"
	Dinner    MealType = "DINNER"
)

// MealTypes lists the meal types in their canonical order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

type (
	MealType string

	Consumer struct {
		ID        string
		Name      string
		Email     *string
		Phone     *string
		IsActive  bool
		CreatedAt time.Time
		UpdatedAt time.Time
		BillCount int // populated by list/get queries only
	}

	Bill struct {
		ID           string
		ConsumerID   string
		ConsumerName string // joined from the owning consumer
		MealType     MealType
		Amount       Money
		Date         Date
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}
)

// ParseMealType accepts the enum names case-insensitively.
func ParseMealType(s string) (MealType, error) {
	mt := MealType(strings.ToUpper(strings.TrimSpace(s)))
	if !mt.Valid() {
		return "", Validationf("invalid meal type %q: must be one of BREAKFAST, LUNCH, DINNER", s)
	}
	return mt, nil
}

func (m MealType) Valid() bool {
	switch m {
	case Breakfast, Lunch, Dinner:
		return true
	}
	return false
}

// Rank is the position of m in MealTypes, or len(MealTypes) when unknown.
func (m MealType) Rank() int {
	for i, mt := range MealTypes {
		if mt == m {
			return i
		}
	}
	return len(MealTypes)
}

func (c Consumer) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return Validationf("name is required")
	}
	if len(name) > 100 {
		return Validationf("name too long (max 100 characters)")
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.ConsumerID) == "" {
		return Validationf("consumerId is required")
	}
	if !b.MealType.Valid() {
		return Validationf("invalid meal type %q: must be one of BREAKFAST, LUNCH, DINNER", string(b.MealType))
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.Date.IsZero() {
		return Validationf("date is required")
	}
	return nil
}
