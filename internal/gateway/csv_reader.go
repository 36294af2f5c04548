package gateway

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"card-spendings/internal/domain"

	"github.com/shopspring/decimal"
)

// Column names of the card spending dataset.
const (
	ColumnIndex       = "index"
	ColumnCity        = "City"
	ColumnDate        = "Date"
	ColumnCardType    = "Card Type"
	ColumnExpenseType = "Exp Type"
	ColumnGender      = "Gender"
	ColumnAmount      = "Amount"
)

var requiredColumns = []string{
	ColumnIndex,
	ColumnCity,
	ColumnDate,
	ColumnCardType,
	ColumnExpenseType,
	ColumnGender,
	ColumnAmount,
}

// CSVTransactionRepository implements the TransactionRepository interface for CSV files.
type CSVTransactionRepository struct{}

// NewCSVTransactionRepository creates a new repository instance.
func NewCSVTransactionRepository() *CSVTransactionRepository {
	return &CSVTransactionRepository{}
}

// GetTransactions reads and parses the card transactions CSV file.
// Columns are located by header name; a missing column fails the load
// before any row is read.
func (r *CSVTransactionRepository) GetTransactions(ctx context.Context, path string) ([]domain.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	columns, err := mapColumns(filepath.Base(path), header)
	if err != nil {
		return nil, err
	}

	var transactions []domain.Transaction
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record from %s: %w", path, err)
		}

		tx, err := parseRecord(record, columns)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

func mapColumns(source string, header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		// Some exports carry a UTF-8 BOM on the first header cell
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		columns[name] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.SchemaError{Source: source, Missing: missing}
	}
	return columns, nil
}

func parseRecord(record []string, columns map[string]int) (domain.Transaction, error) {
	field := func(name string) string {
		return strings.TrimSpace(record[columns[name]])
	}

	index, err := strconv.Atoi(field(ColumnIndex))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("could not parse index '%s': %w", field(ColumnIndex), err)
	}

	amount, err := decimal.NewFromString(field(ColumnAmount))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("record %d: could not parse amount '%s': %w", index, field(ColumnAmount), err)
	}
	if amount.IsNegative() {
		return domain.Transaction{}, fmt.Errorf("record %d: amount %s is negative", index, amount)
	}

	tx := domain.Transaction{
		Index:       index,
		City:        field(ColumnCity),
		Date:        field(ColumnDate),
		CardType:    domain.CardType(field(ColumnCardType)),
		ExpenseType: domain.ExpenseType(field(ColumnExpenseType)),
		Gender:      domain.Gender(field(ColumnGender)),
		Amount:      amount,
	}

	if !tx.CardType.Valid() {
		return domain.Transaction{}, fmt.Errorf("record %d: unknown card type '%s'", index, tx.CardType)
	}
	if !tx.ExpenseType.Valid() {
		return domain.Transaction{}, fmt.Errorf("record %d: unknown expense type '%s'", index, tx.ExpenseType)
	}
	if !tx.Gender.Valid() {
		return domain.Transaction{}, fmt.Errorf("record %d: unknown gender '%s'", index, tx.Gender)
	}
	return tx, nil
}
