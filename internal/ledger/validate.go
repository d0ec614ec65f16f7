package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/models"
)

// ExpenseDraft is the caller-supplied part of a new expense.
type ExpenseDraft struct {
	Title        string             `validate:"required"`
	Amount       decimal.Decimal    `validate:"-"`
	Category     models.Category    `validate:"category"`
	Type         models.ExpenseType `validate:"expensetype"`
	Payer        string             `validate:"required"`
	Participants []string           `validate:"-"` // checked for shared expenses only
}

// PersonDraft is the caller-supplied part of a new roommate.
type PersonDraft struct {
	Name  string `validate:"required"`
	Color string `validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("expensetype", func(fl validator.FieldLevel) bool {
		return models.ExpenseType(fl.Field().String()).Valid()
	})
	return v
}

// checkStruct runs the tag validation and converts the first failure into a
// *ValidationError.
func checkStruct(v *validator.Validate, draft any) error {
	err := v.Struct(draft)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return invalid("draft", err.Error())
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return invalid(field, "is required")
	case "category":
		return invalid(field, fmt.Sprintf("unknown category %q", fe.Value()))
	case "expensetype":
		return invalid(field, "must be personal or shared")
	default:
		return invalid(field, "failed "+fe.Tag()+" check")
	}
}
