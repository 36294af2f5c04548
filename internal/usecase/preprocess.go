package usecase

import (
	"strings"
	"unicode/utf8"

	"card-spendings/internal/domain"

	"github.com/shopspring/decimal"
)

const countrySeparator = ", "

// NormalizeCity strips a trailing ", <country>" suffix. Values without the
// separator are returned unchanged.
func NormalizeCity(city string) string {
	name, _, _ := strings.Cut(city, countrySeparator)
	return name
}

// NormalizeCities returns a copy of records with every city normalized.
func NormalizeCities(records []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(records))
	for i, rec := range records {
		rec.City = NormalizeCity(rec.City)
		out[i] = rec
	}
	return out
}

type rowKey struct {
	city        string
	date        string
	cardType    domain.CardType
	expenseType domain.ExpenseType
	gender      domain.Gender
	amount      string
}

// FindDuplicates reports rows whose content repeats an earlier row.
// The index column is ignored since it is unique per row.
func FindDuplicates(records []domain.Transaction) []domain.DuplicateRow {
	seen := make(map[rowKey]int, len(records))
	duplicates := make([]domain.DuplicateRow, 0)
	for _, rec := range records {
		key := rowKey{
			city:        rec.City,
			date:        rec.Date,
			cardType:    rec.CardType,
			expenseType: rec.ExpenseType,
			gender:      rec.Gender,
			amount:      rec.Amount.String(),
		}
		if first, ok := seen[key]; ok {
			duplicates = append(duplicates, domain.DuplicateRow{Index: rec.Index, DuplicateOf: first})
			continue
		}
		seen[key] = rec.Index
	}
	return duplicates
}

// ValueCounts counts records per distinct field value, most frequent first.
// Values with equal counts keep the order they first appear.
func ValueCounts(records []domain.Transaction, field domain.Field) ([]domain.ValueCount, error) {
	groups, err := GroupSum(records, []domain.Field{field}, domain.AmountMeasure)
	if err != nil {
		return nil, err
	}

	counts := make([]domain.ValueCount, len(groups))
	for i, g := range groups {
		counts[i] = domain.ValueCount{Value: g.Keys[0], Count: g.Count}
	}
	return sortByValue(counts, func(c domain.ValueCount) decimal.Decimal { return decimal.NewFromInt(int64(c.Count)) }, true), nil
}

var profiledFields = []domain.Field{
	domain.FieldCity,
	domain.FieldDate,
	domain.FieldCardType,
	domain.FieldExpenseType,
	domain.FieldGender,
}

// Profile summarizes the record set: size, distinct values per column,
// category frequencies and amount statistics.
func Profile(records []domain.Transaction, topCities int) (domain.DatasetProfile, error) {
	profile := domain.DatasetProfile{
		Rows:           len(records),
		DistinctValues: make(map[domain.Field]int, len(profiledFields)),
	}

	for _, field := range profiledFields {
		counts, err := ValueCounts(records, field)
		if err != nil {
			return domain.DatasetProfile{}, err
		}
		profile.DistinctValues[field] = len(counts)

		switch field {
		case domain.FieldCity:
			profile.TopCities = head(counts, topCities)
		case domain.FieldCardType:
			profile.CardTypes = counts
		case domain.FieldExpenseType:
			profile.ExpenseTypes = counts
		case domain.FieldGender:
			profile.Genders = counts
		}
	}

	profile.Amount = amountStats(records)
	return profile, nil
}

func amountStats(records []domain.Transaction) domain.AmountStats {
	stats := domain.AmountStats{Total: decimal.Zero, Min: decimal.Zero, Max: decimal.Zero, Mean: decimal.Zero}
	if len(records) == 0 {
		return stats
	}

	stats.Min = records[0].Amount
	stats.Max = records[0].Amount
	for _, rec := range records {
		stats.Total = stats.Total.Add(rec.Amount)
		stats.Min = decimal.Min(stats.Min, rec.Amount)
		stats.Max = decimal.Max(stats.Max, rec.Amount)
	}
	stats.Mean = stats.Total.Div(decimal.NewFromInt(int64(len(records)))).Round(2)
	return stats
}

// CityPresence tells, for each requested city, whether any record was made there.
func CityPresence(records []domain.Transaction, cities []string) []domain.CityPresence {
	known := distinctCities(records)
	out := make([]domain.CityPresence, 0, len(cities))
	for _, city := range cities {
		_, ok := known.index[city]
		out = append(out, domain.CityPresence{City: city, Present: ok})
	}
	return out
}

// CitiesMatching lists distinct cities that start with one of prefixes and
// are longer than minLength characters, in first-seen order.
func CitiesMatching(records []domain.Transaction, prefixes []string, minLength int) []string {
	out := make([]string, 0)
	for _, city := range distinctCities(records).order {
		if utf8.RuneCountInString(city) <= minLength {
			continue
		}
		for _, prefix := range prefixes {
			if prefix != "" && strings.HasPrefix(city, prefix) {
				out = append(out, city)
				break
			}
		}
	}
	return out
}

type citySet struct {
	order []string
	index map[string]struct{}
}

func distinctCities(records []domain.Transaction) citySet {
	set := citySet{index: make(map[string]struct{})}
	for _, rec := range records {
		if _, ok := set.index[rec.City]; ok {
			continue
		}
		set.index[rec.City] = struct{}{}
		set.order = append(set.order, rec.City)
	}
	return set
}
