package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// CardType is the payment card product used for a transaction.
type CardType string

const (
	CardTypeGold      CardType = "Gold"
	CardTypePlatinum  CardType = "Platinum"
	CardTypeSilver    CardType = "Silver"
	CardTypeSignature CardType = "Signature"
)

// ExpenseType is the spending category of a transaction.
type ExpenseType string

const (
	ExpenseTypeFood          ExpenseType = "Food"
	ExpenseTypeFuel          ExpenseType = "Fuel"
	ExpenseTypeBills         ExpenseType = "Bills"
	ExpenseTypeEntertainment ExpenseType = "Entertainment"
	ExpenseTypeGrocery       ExpenseType = "Grocery"
	ExpenseTypeTravel        ExpenseType = "Travel"
)

// Gender is the cardholder gender code used in the dataset.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

var (
	cardTypes    = []CardType{CardTypeGold, CardTypePlatinum, CardTypeSilver, CardTypeSignature}
	expenseTypes = []ExpenseType{ExpenseTypeFood, ExpenseTypeFuel, ExpenseTypeBills, ExpenseTypeEntertainment, ExpenseTypeGrocery, ExpenseTypeTravel}
)

// Valid reports whether c is one of the known card types.
func (c CardType) Valid() bool {
	for _, known := range cardTypes {
		if c == known {
			return true
		}
	}
	return false
}

// Valid reports whether e is one of the known expense types.
func (e ExpenseType) Valid() bool {
	for _, known := range expenseTypes {
		if e == known {
			return true
		}
	}
	return false
}

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// DateFeatures holds the calendar attributes derived from a transaction date.
type DateFeatures struct {
	Year      int    `json:"year"`
	Month     string `json:"month"`
	DayNumber int    `json:"day_number"`
	DayName   string `json:"day_name"`
}

// IsZero reports whether the features have not been extracted yet.
func (f DateFeatures) IsZero() bool {
	return f == DateFeatures{}
}

// Transaction represents one row of the card spending dataset.
// Rows are immutable once the calendar features are attached.
type Transaction struct {
	Index       int             `json:"index"` // Identifier only, never aggregated
	City        string          `json:"city"`
	Date        string          `json:"date"` // Raw day-month-year text
	CardType    CardType        `json:"card_type"`
	ExpenseType ExpenseType     `json:"exp_type"`
	Gender      Gender          `json:"gender"`
	Amount      decimal.Decimal `json:"amount"`

	// Derived by the date feature extractor
	Calendar DateFeatures `json:"calendar"`
}

// Field selects one attribute of a transaction for grouping or filtering.
type Field string

const (
	FieldCity        Field = "City"
	FieldDate        Field = "Date"
	FieldCardType    Field = "Card Type"
	FieldExpenseType Field = "Exp Type"
	FieldGender      Field = "Gender"
	FieldYear        Field = "Year"
	FieldMonth       Field = "Month"
	FieldDayNumber   Field = "Day Number"
	FieldDayName     Field = "Day Name"
)

func (f Field) derived() bool {
	switch f {
	case FieldYear, FieldMonth, FieldDayNumber, FieldDayName:
		return true
	}
	return false
}

// Value renders the selected field as a grouping key. Calendar fields
// require the date features to be extracted first.
func (t Transaction) Value(f Field) (string, error) {
	if f.derived() && t.Calendar.IsZero() {
		return "", &SchemaError{Field: string(f), Reason: "date features have not been extracted"}
	}

	switch f {
	case FieldCity:
		return t.City, nil
	case FieldDate:
		return t.Date, nil
	case FieldCardType:
		return string(t.CardType), nil
	case FieldExpenseType:
		return string(t.ExpenseType), nil
	case FieldGender:
		return string(t.Gender), nil
	case FieldYear:
		return strconv.Itoa(t.Calendar.Year), nil
	case FieldMonth:
		return t.Calendar.Month, nil
	case FieldDayNumber:
		return strconv.Itoa(t.Calendar.DayNumber), nil
	case FieldDayName:
		return t.Calendar.DayName, nil
	}
	return "", &SchemaError{Field: string(f), Reason: "unknown field"}
}

// Measure selects the numeric quantity reduced by an aggregation.
type Measure func(Transaction) decimal.Decimal

// AmountMeasure reduces the transaction amount.
func AmountMeasure(t Transaction) decimal.Decimal {
	return t.Amount
}
