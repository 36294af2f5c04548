package usecase

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"card-spendings/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrNoGroupingKeys is returned when an aggregation is requested without keys.
var ErrNoGroupingKeys = errors.New("at least one grouping key is required")

// keySeparator joins key values into one map key. It cannot occur in CSV text fields.
const keySeparator = "\x1f"

// groupIndex accumulates groups and remembers the order keys were first seen.
type groupIndex struct {
	order  []string
	groups map[string]*domain.Group
}

func newGroupIndex() *groupIndex {
	return &groupIndex{groups: make(map[string]*domain.Group)}
}

func (g *groupIndex) add(keys []string, total decimal.Decimal, count int) {
	id := strings.Join(keys, keySeparator)
	group, ok := g.groups[id]
	if !ok {
		group = &domain.Group{Keys: keys, Total: decimal.Zero}
		g.groups[id] = group
		g.order = append(g.order, id)
	}
	group.Total = group.Total.Add(total)
	group.Count += count
}

func (g *groupIndex) merge(other *groupIndex) {
	for _, id := range other.order {
		group := other.groups[id]
		g.add(group.Keys, group.Total, group.Count)
	}
}

func (g *groupIndex) result() []domain.Group {
	out := make([]domain.Group, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.groups[id])
	}
	return out
}

func groupPartition(records []domain.Transaction, keys []domain.Field, measure domain.Measure) (*groupIndex, error) {
	index := newGroupIndex()
	for _, rec := range records {
		values := make([]string, len(keys))
		for i, field := range keys {
			v, err := rec.Value(field)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", rec.Index, err)
			}
			values[i] = v
		}
		index.add(values, measure(rec), 1)
	}
	return index, nil
}

// GroupSum produces one group per distinct combination of key values, summing
// the measure over the records that share it. Groups come out in the order
// their key combination first appears. Keys are compared exactly, so textual
// fields must be normalized beforehand. A nil measure sums the amount.
func GroupSum(records []domain.Transaction, keys []domain.Field, measure domain.Measure) ([]domain.Group, error) {
	if len(keys) == 0 {
		return nil, ErrNoGroupingKeys
	}
	if measure == nil {
		measure = domain.AmountMeasure
	}

	index, err := groupPartition(records, keys, measure)
	if err != nil {
		return nil, err
	}
	return index.result(), nil
}

// Sum returns the total of the measure over all records.
func Sum(records []domain.Transaction, measure domain.Measure) decimal.Decimal {
	if measure == nil {
		measure = domain.AmountMeasure
	}
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(measure(rec))
	}
	return total
}

// SortGroups returns a copy of groups stably sorted by total. Ties keep their input order.
func SortGroups(groups []domain.Group, descending bool) []domain.Group {
	return sortByValue(groups, func(g domain.Group) decimal.Decimal { return g.Total }, descending)
}

// TopN returns the n groups with the largest totals.
func TopN(groups []domain.Group, n int) []domain.Group {
	return head(SortGroups(groups, true), n)
}

// BottomN returns the n groups with the smallest totals.
func BottomN(groups []domain.Group, n int) []domain.Group {
	return head(SortGroups(groups, false), n)
}

// FilterGroups keeps the groups whose key at position equals value.
// The key at that position is dropped from the kept groups.
func FilterGroups(groups []domain.Group, position int, value string) []domain.Group {
	out := make([]domain.Group, 0)
	for _, g := range groups {
		if position >= len(g.Keys) || g.Keys[position] != value {
			continue
		}
		keys := make([]string, 0, len(g.Keys)-1)
		keys = append(keys, g.Keys[:position]...)
		keys = append(keys, g.Keys[position+1:]...)
		out = append(out, domain.Group{Keys: keys, Total: g.Total, Count: g.Count})
	}
	return out
}

// Difference joins groups keyed by (category, attribute) into one row per
// category holding the totals for attribute values a and b and a minus b.
// A category missing one side gets zero for it rather than being dropped.
// Rows come out in the order categories first appear.
func Difference(groups []domain.Group, a, b string) ([]domain.GroupDifference, error) {
	if a == b {
		return nil, fmt.Errorf("attribute values must differ, got '%s' twice", a)
	}

	var order []string
	rows := make(map[string]*domain.GroupDifference)
	for _, g := range groups {
		if len(g.Keys) != 2 {
			return nil, fmt.Errorf("difference needs groups keyed by (category, attribute), got %d keys", len(g.Keys))
		}
		category, attribute := g.Keys[0], g.Keys[1]

		row, ok := rows[category]
		if !ok {
			row = &domain.GroupDifference{Key: category, TotalA: decimal.Zero, TotalB: decimal.Zero}
			rows[category] = row
			order = append(order, category)
		}

		switch attribute {
		case a:
			row.TotalA = row.TotalA.Add(g.Total)
		case b:
			row.TotalB = row.TotalB.Add(g.Total)
		default:
			return nil, fmt.Errorf("category '%s': unexpected attribute value '%s', want '%s' or '%s'", category, attribute, a, b)
		}
	}

	out := make([]domain.GroupDifference, 0, len(order))
	for _, category := range order {
		row := rows[category]
		row.Difference = row.TotalA.Sub(row.TotalB)
		out = append(out, *row)
	}
	return out, nil
}

// SortDifferences returns a copy of rows stably sorted by difference.
func SortDifferences(rows []domain.GroupDifference, descending bool) []domain.GroupDifference {
	return sortByValue(rows, func(r domain.GroupDifference) decimal.Decimal { return r.Difference }, descending)
}

// Subset returns the records whose field value is one of values, in input order.
func Subset(records []domain.Transaction, field domain.Field, values ...string) ([]domain.Transaction, error) {
	targets := make(map[string]struct{}, len(values))
	for _, v := range values {
		targets[v] = struct{}{}
	}

	out := make([]domain.Transaction, 0)
	for _, rec := range records {
		v, err := rec.Value(field)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.Index, err)
		}
		if _, ok := targets[v]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func sortByValue[T any](items []T, value func(T) decimal.Decimal, descending bool) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(x, y T) int {
		c := value(x).Cmp(value(y))
		if descending {
			return -c
		}
		return c
	})
	return out
}

func head[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n < len(items) {
		return items[:n]
	}
	return items
}
