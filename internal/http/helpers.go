package http

import (
	"net/http"
	"strings"
	"time"

	"mealbills/internal/core"
)

const timestampLayout = time.RFC3339Nano

type billResponse struct {
	ID           string        `json:"id"`
	ConsumerID   string        `json:"consumerId"`
	ConsumerName string        `json:"consumerName"`
	MealType     core.MealType `json:"mealType"`
	Amount       core.Money    `json:"amount"`
	Date         core.Date     `json:"date"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
}

type consumerResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	IsActive  bool    `json:"isActive"`
	BillCount int     `json:"billCount"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

func toBillResponse(b core.Bill) billResponse {
	return billResponse{
		ID:           b.ID,
		ConsumerID:   b.ConsumerID,
		ConsumerName: b.ConsumerName,
		MealType:     b.MealType,
		Amount:       b.Amount,
		Date:         b.Date,
		CreatedAt:    b.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:    b.UpdatedAt.UTC().Format(timestampLayout),
	}
}

func toBillResponses(bills []core.Bill) []billResponse {
	out := make([]billResponse, len(bills))
	for i, b := range bills {
		out[i] = toBillResponse(b)
	}
	return out
}

func toConsumerResponse(c core.Consumer) consumerResponse {
	return consumerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		IsActive:  c.IsActive,
		BillCount: c.BillCount,
		CreatedAt: c.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt: c.UpdatedAt.UTC().Format(timestampLayout),
	}
}

// nonNil keeps empty collections rendering as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// sanitizeInput trims whitespace and drops control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func queryParam(r *http.Request, key string) string {
	return sanitizeInput(r.URL.Query().Get(key))
}
