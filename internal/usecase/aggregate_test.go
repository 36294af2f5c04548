package usecase_test

import (
	"errors"
	"testing"

	"card-spendings/internal/datefeature"
	"card-spendings/internal/domain"
	"card-spendings/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(index int, city string, gender domain.Gender, amount int64, date string) domain.Transaction {
	return domain.Transaction{
		Index:       index,
		City:        city,
		Date:        date,
		CardType:    domain.CardTypeGold,
		ExpenseType: domain.ExpenseTypeFood,
		Gender:      gender,
		Amount:      decimal.NewFromInt(amount),
	}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// assertGroups compares groups with decimal-aware total equality.
func assertGroups(t *testing.T, expected, got []domain.Group) {
	t.Helper()
	require.Len(t, got, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].Keys, got[i].Keys, "keys[%d]", i)
		assert.True(t, expected[i].Total.Equal(got[i].Total), "total[%d] = %s, want %s", i, got[i].Total, expected[i].Total)
		assert.Equal(t, expected[i].Count, got[i].Count, "count[%d]", i)
	}
}

func TestGroupSum(t *testing.T) {
	records := []domain.Transaction{
		tx(0, "Delhi", domain.GenderFemale, 100, "1-1-2014"),
		tx(1, "Mumbai", domain.GenderMale, 250, "1-1-2014"),
		tx(2, "Delhi", domain.GenderMale, 50, "1-1-2014"),
		tx(3, "Delhi", domain.GenderFemale, 25, "1-1-2014"),
		tx(4, "delhi", domain.GenderFemale, 5, "1-1-2014"),
	}

	tests := []struct {
		name     string
		records  []domain.Transaction
		keys     []domain.Field
		expected []domain.Group
		wantErr  bool
	}{
		{
			name:    "single key in first-seen order",
			records: records,
			keys:    []domain.Field{domain.FieldCity},
			expected: []domain.Group{
				{Keys: []string{"Delhi"}, Total: dec(175), Count: 3},
				{Keys: []string{"Mumbai"}, Total: dec(250), Count: 1},
				{Keys: []string{"delhi"}, Total: dec(5), Count: 1},
			},
		},
		{
			name:    "two keys",
			records: records,
			keys:    []domain.Field{domain.FieldCity, domain.FieldGender},
			expected: []domain.Group{
				{Keys: []string{"Delhi", "F"}, Total: dec(125), Count: 2},
				{Keys: []string{"Mumbai", "M"}, Total: dec(250), Count: 1},
				{Keys: []string{"Delhi", "M"}, Total: dec(50), Count: 1},
				{Keys: []string{"delhi", "F"}, Total: dec(5), Count: 1},
			},
		},
		{
			name:    "single group is valid",
			records: records,
			keys:    []domain.Field{domain.FieldCardType},
			expected: []domain.Group{
				{Keys: []string{"Gold"}, Total: dec(430), Count: 5},
			},
		},
		{
			name:     "empty input",
			records:  nil,
			keys:     []domain.Field{domain.FieldCity},
			expected: []domain.Group{},
		},
		{
			name:    "no keys",
			records: records,
			keys:    nil,
			wantErr: true,
		},
		{
			name:    "calendar field before extraction",
			records: records,
			keys:    []domain.Field{domain.FieldMonth},
			wantErr: true,
		},
		{
			name:    "unknown field",
			records: records,
			keys:    []domain.Field{"Merchant"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := usecase.GroupSum(tt.records, tt.keys, nil)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assertGroups(t, tt.expected, got)
		})
	}
}

func TestGroupSum_SchemaErrors(t *testing.T) {
	records := []domain.Transaction{tx(0, "Delhi", domain.GenderFemale, 100, "1-1-2014")}

	_, err := usecase.GroupSum(records, []domain.Field{"Merchant"}, nil)
	var se *domain.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Merchant", se.Field)

	_, err = usecase.GroupSum(records, nil, nil)
	assert.ErrorIs(t, err, usecase.ErrNoGroupingKeys)
}

func TestGroupSum_Conservation(t *testing.T) {
	records := []domain.Transaction{
		tx(0, "Delhi", domain.GenderFemale, 82475, "29-10-2014"),
		tx(1, "Greater Mumbai", domain.GenderFemale, 32555, "22-8-2014"),
		tx(2, "Bengaluru", domain.GenderMale, 101738, "27-8-2014"),
		tx(3, "Delhi", domain.GenderMale, 123424, "12-4-2014"),
		tx(4, "Kolkata", domain.GenderFemale, 171574, "5-5-2015"),
		tx(5, "Delhi", domain.GenderMale, 100036, "8-9-2014"),
	}
	records[2].Amount = decimal.RequireFromString("101738.35")
	records[4].Amount = decimal.RequireFromString("171574.10")

	records, err := datefeature.New("").Apply(records)
	require.NoError(t, err)

	grand := usecase.Sum(records, nil)

	keySets := [][]domain.Field{
		{domain.FieldCity},
		{domain.FieldCity, domain.FieldGender},
		{domain.FieldMonth, domain.FieldCardType},
		{domain.FieldDayName, domain.FieldGender},
		{domain.FieldYear, domain.FieldMonth, domain.FieldDayNumber},
	}
	for _, keys := range keySets {
		groups, err := usecase.GroupSum(records, keys, domain.AmountMeasure)
		require.NoError(t, err)

		total := decimal.Zero
		for _, g := range groups {
			total = total.Add(g.Total)
		}
		assert.True(t, grand.Equal(total), "keys %v: %s != %s", keys, total, grand)
	}

	// Delhi plus all other cities equals the grand total
	groups, err := usecase.GroupSum(records, []domain.Field{domain.FieldCity}, nil)
	require.NoError(t, err)
	delhi := usecase.FilterGroups(groups, 0, "Delhi")
	require.Len(t, delhi, 1)
	others := decimal.Zero
	for _, g := range groups {
		if g.Keys[0] != "Delhi" {
			others = others.Add(g.Total)
		}
	}
	assert.True(t, grand.Equal(delhi[0].Total.Add(others)))
}

func TestSortGroups_TopAndBottom(t *testing.T) {
	groups := []domain.Group{
		{Keys: []string{"A"}, Total: dec(10)},
		{Keys: []string{"B"}, Total: dec(30)},
		{Keys: []string{"C"}, Total: dec(10)},
		{Keys: []string{"D"}, Total: dec(30)},
		{Keys: []string{"E"}, Total: dec(20)},
	}

	keysOf := func(gs []domain.Group) []string {
		var out []string
		for _, g := range gs {
			out = append(out, g.Keys[0])
		}
		return out
	}

	assert.Equal(t, []string{"B", "D", "E", "A", "C"}, keysOf(usecase.SortGroups(groups, true)))
	assert.Equal(t, []string{"A", "C", "E", "B", "D"}, keysOf(usecase.SortGroups(groups, false)))
	assert.Equal(t, []string{"B", "D"}, keysOf(usecase.TopN(groups, 2)))
	assert.Equal(t, []string{"A", "C", "E"}, keysOf(usecase.BottomN(groups, 3)))
	assert.Len(t, usecase.TopN(groups, 50), 5)
	assert.Empty(t, usecase.TopN(groups, 0))

	// input is left in place
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, keysOf(groups))
}

func TestFilterGroups(t *testing.T) {
	groups := []domain.Group{
		{Keys: []string{"29", "January", "Food"}, Total: dec(10), Count: 1},
		{Keys: []string{"30", "January", "Food"}, Total: dec(20), Count: 2},
		{Keys: []string{"29", "March", "Travel"}, Total: dec(30), Count: 3},
	}

	got := usecase.FilterGroups(groups, 0, "29")
	assertGroups(t, []domain.Group{
		{Keys: []string{"January", "Food"}, Total: dec(10), Count: 1},
		{Keys: []string{"March", "Travel"}, Total: dec(30), Count: 3},
	}, got)

	assert.Empty(t, usecase.FilterGroups(groups, 0, "31"))
	assert.Empty(t, usecase.FilterGroups(groups, 5, "29"))
}

func TestDifference(t *testing.T) {
	tests := []struct {
		name     string
		groups   []domain.Group
		expected []domain.GroupDifference
		wantErr  bool
	}{
		{
			name: "both sides present",
			groups: []domain.Group{
				{Keys: []string{"Pune", "M"}, Total: dec(100)},
				{Keys: []string{"Pune", "F"}, Total: dec(150)},
			},
			expected: []domain.GroupDifference{
				{Key: "Pune", TotalA: dec(100), TotalB: dec(150), Difference: dec(-50)},
			},
		},
		{
			name: "only attribute A present is zero filled",
			groups: []domain.Group{
				{Keys: []string{"Mumbai", "M"}, Total: dec(200)},
			},
			expected: []domain.GroupDifference{
				{Key: "Mumbai", TotalA: dec(200), TotalB: dec(0), Difference: dec(200)},
			},
		},
		{
			name: "only attribute B present is zero filled",
			groups: []domain.Group{
				{Keys: []string{"Salem", "F"}, Total: dec(75)},
			},
			expected: []domain.GroupDifference{
				{Key: "Salem", TotalA: dec(0), TotalB: dec(75), Difference: dec(-75)},
			},
		},
		{
			name: "categories keep first-seen order",
			groups: []domain.Group{
				{Keys: []string{"Delhi", "F"}, Total: dec(10)},
				{Keys: []string{"Agra", "M"}, Total: dec(5)},
				{Keys: []string{"Delhi", "M"}, Total: dec(40)},
			},
			expected: []domain.GroupDifference{
				{Key: "Delhi", TotalA: dec(40), TotalB: dec(10), Difference: dec(30)},
				{Key: "Agra", TotalA: dec(5), TotalB: dec(0), Difference: dec(5)},
			},
		},
		{
			name:     "empty input",
			groups:   nil,
			expected: []domain.GroupDifference{},
		},
		{
			name: "unexpected attribute value",
			groups: []domain.Group{
				{Keys: []string{"Pune", "X"}, Total: dec(1)},
			},
			wantErr: true,
		},
		{
			name: "wrong key count",
			groups: []domain.Group{
				{Keys: []string{"Pune"}, Total: dec(1)},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := usecase.Difference(tt.groups, "M", "F")
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.expected))
			for i, want := range tt.expected {
				assert.Equal(t, want.Key, got[i].Key)
				assert.True(t, want.TotalA.Equal(got[i].TotalA), "%s total A = %s", want.Key, got[i].TotalA)
				assert.True(t, want.TotalB.Equal(got[i].TotalB), "%s total B = %s", want.Key, got[i].TotalB)
				assert.True(t, want.Difference.Equal(got[i].Difference), "%s difference = %s", want.Key, got[i].Difference)
			}
		})
	}

	t.Run("identical attribute values", func(t *testing.T) {
		_, err := usecase.Difference(nil, "M", "M")
		assert.Error(t, err)
	})
}

func TestSubset(t *testing.T) {
	records, err := datefeature.New("").Apply([]domain.Transaction{
		tx(0, "Delhi", domain.GenderFemale, 1, "29-1-2014"),
		tx(1, "Delhi", domain.GenderFemale, 2, "15-1-2014"),
		tx(2, "Delhi", domain.GenderFemale, 3, "31-3-2014"),
		tx(3, "Delhi", domain.GenderFemale, 4, "30-4-2014"),
		tx(4, "Delhi", domain.GenderFemale, 5, "1-5-2014"),
	})
	require.NoError(t, err)

	t.Run("end of month days in input order", func(t *testing.T) {
		got, err := usecase.Subset(records, domain.FieldDayNumber, "29", "30", "31")
		require.NoError(t, err)

		var indexes []int
		for _, rec := range got {
			indexes = append(indexes, rec.Index)
			assert.Contains(t, []int{29, 30, 31}, rec.Calendar.DayNumber)
		}
		assert.Equal(t, []int{0, 2, 3}, indexes)
	})

	t.Run("no match is empty", func(t *testing.T) {
		got, err := usecase.Subset(records, domain.FieldDayNumber, "28")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("empty target set", func(t *testing.T) {
		got, err := usecase.Subset(records, domain.FieldCity)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := usecase.Subset(records, "Merchant", "x")
		assert.Error(t, err)
	})
}

func TestEndToEnd_CityGenderDifference(t *testing.T) {
	raw := []domain.Transaction{
		tx(0, "Pune, India", domain.GenderMale, 100, "1-1-2014"),
		tx(1, "Pune", domain.GenderFemale, 150, "2-1-2014"),
		tx(2, "Mumbai, India", domain.GenderMale, 200, "3-1-2014"),
	}

	records := usecase.NormalizeCities(raw)
	groups, err := usecase.GroupSum(records, []domain.Field{domain.FieldCity, domain.FieldGender}, domain.AmountMeasure)
	require.NoError(t, err)
	assertGroups(t, []domain.Group{
		{Keys: []string{"Pune", "M"}, Total: dec(100), Count: 1},
		{Keys: []string{"Pune", "F"}, Total: dec(150), Count: 1},
		{Keys: []string{"Mumbai", "M"}, Total: dec(200), Count: 1},
	}, groups)

	diffs, err := usecase.Difference(groups, "M", "F")
	require.NoError(t, err)
	require.Len(t, diffs, 2)
	assert.Equal(t, "Pune", diffs[0].Key)
	assert.True(t, dec(-50).Equal(diffs[0].Difference))
	assert.Equal(t, "Mumbai", diffs[1].Key)
	assert.True(t, dec(200).Equal(diffs[1].Difference))
	assert.True(t, diffs[1].TotalB.IsZero())
}
