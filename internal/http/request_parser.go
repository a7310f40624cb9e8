package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"mealbills/internal/core"
	"mealbills/internal/services"
)

// maxBodyBytes caps request bodies; every payload here is a few fields.
const maxBodyBytes = 64 << 10

type createBillRequest struct {
	ConsumerID string          `json:"consumerId" validate:"required"`
	MealType   string          `json:"mealType" validate:"required"`
	Amount     json.RawMessage `json:"amount" validate:"required"`
	Date       string          `json:"date" validate:"required"`
}

type updateBillRequest struct {
	ConsumerID *string         `json:"consumerId" validate:"omitempty,min=1"`
	MealType   *string         `json:"mealType" validate:"omitempty,min=1"`
	Amount     json.RawMessage `json:"amount"`
	Date       *string         `json:"date" validate:"omitempty,min=1"`
}

type consumerRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Email    *string `json:"email" validate:"omitempty,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	IsActive *bool   `json:"isActive"`
}

type exportJobRequest struct {
	ConsumerName string `json:"consumerName"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON object into dst and validates it.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return core.Validationf("Request body is required")
		}
		return core.Validationf("Invalid JSON body")
	}
	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return core.Validationf("Invalid request")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return core.Validationf("Missing required fields: %s", missingFields(verrs))
	case "max":
		return core.Validationf("%s too long (max %s characters)", fe.Field(), fe.Param())
	case "min":
		return core.Validationf("%s must not be empty", fe.Field())
	default:
		return core.Validationf("%s is invalid", fe.Field())
	}
}

func missingFields(verrs validator.ValidationErrors) string {
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			names = append(names, fe.Field())
		}
	}
	return strings.Join(names, ", ")
}

func (req createBillRequest) toInput() (services.BillInput, error) {
	mt, err := core.ParseMealType(req.MealType)
	if err != nil {
		return services.BillInput{}, err
	}
	amount, err := core.ParseAmountJSON(req.Amount)
	if err != nil {
		return services.BillInput{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return services.BillInput{}, err
	}
	return services.BillInput{
		ConsumerID: strings.TrimSpace(req.ConsumerID),
		MealType:   mt,
		Amount:     amount,
		Date:       date,
	}, nil
}

func (req updateBillRequest) toPatch() (services.BillPatch, error) {
	var p services.BillPatch
	if req.ConsumerID != nil {
		id := strings.TrimSpace(*req.ConsumerID)
		p.ConsumerID = &id
	}
	if req.MealType != nil {
		mt, err := core.ParseMealType(*req.MealType)
		if err != nil {
			return p, err
		}
		p.MealType = &mt
	}
	if len(req.Amount) > 0 {
		amount, err := core.ParseAmountJSON(req.Amount)
		if err != nil {
			return p, err
		}
		p.Amount = &amount
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			return p, err
		}
		p.Date = &date
	}
	return p, nil
}

func (req consumerRequest) toInput() services.ConsumerInput {
	return services.ConsumerInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	}
}

// parseIsActive reads the optional isActive query flag.
func parseIsActive(raw string) (*bool, error) {
	switch strings.ToLower(raw) {
	case "":
		return nil, nil
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	}
	return nil, core.Validationf("invalid isActive %q: must be true or false", raw)
}
