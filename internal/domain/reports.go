package domain

import "github.com/shopspring/decimal"

// Group is one aggregation bucket: the grouping key values and the summed measure.
type Group struct {
	Keys  []string        `json:"keys"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// GroupDifference compares the totals of two binary attribute values for one key.
// Difference is TotalA minus TotalB, so a positive value means A outspent B.
type GroupDifference struct {
	Key        string          `json:"key"`
	TotalA     decimal.Decimal `json:"total_a"`
	TotalB     decimal.Decimal `json:"total_b"`
	Difference decimal.Decimal `json:"difference"`
}

// ChartKind names the chart a presentation layer should draw.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)

// ChartSpec describes a chart for an external plotting component.
type ChartSpec struct {
	Kind         ChartKind `json:"kind"`
	Title        string    `json:"title"`
	CategoryAxis Field     `json:"category_axis"`
	ValueAxis    string    `json:"value_axis"`
	Series       Field     `json:"series,omitempty"`
	ShowValues   bool      `json:"show_values"`
	Data         []Group   `json:"data"`
}

// ValueCount is the frequency of one distinct column value.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// AmountStats summarizes the amount column.
type AmountStats struct {
	Total decimal.Decimal `json:"total"`
	Min   decimal.Decimal `json:"min"`
	Max   decimal.Decimal `json:"max"`
	Mean  decimal.Decimal `json:"mean"`
}

// DatasetProfile provides high-level statistics of the loaded records.
type DatasetProfile struct {
	Rows           int           `json:"rows"`
	DistinctValues map[Field]int `json:"distinct_values"`
	Genders        []ValueCount  `json:"genders"`
	CardTypes      []ValueCount  `json:"card_types"`
	ExpenseTypes   []ValueCount  `json:"expense_types"`
	TopCities      []ValueCount  `json:"top_cities"`
	Amount         AmountStats   `json:"amount"`
}

// DuplicateRow pairs a repeated row with the first row it repeats.
type DuplicateRow struct {
	Index       int `json:"index"`
	DuplicateOf int `json:"duplicate_of"`
}

// CityPresence tells whether any transaction was recorded in a city.
type CityPresence struct {
	City    string `json:"city"`
	Present bool   `json:"present"`
}

// GenderGap holds the per-city male minus female spending difference.
type GenderGap struct {
	Differences           []GroupDifference `json:"differences"`
	MaleDominatedTop      []GroupDifference `json:"male_dominated_top"`
	MaleDominatedBottom   []GroupDifference `json:"male_dominated_bottom"`
	FemaleDominatedTop    []GroupDifference `json:"female_dominated_top"`
	FemaleDominatedBottom []GroupDifference `json:"female_dominated_bottom"`
}

// CitySpending answers which cities spend most and how genders differ there.
type CitySpending struct {
	Totals    []Group   `json:"totals"`
	GenderGap GenderGap `json:"gender_gap"`
}

// EndOfMonthSpending covers transactions on the last days of a month.
type EndOfMonthSpending struct {
	Days   []int       `json:"days"`
	Groups []Group     `json:"groups"`
	Charts []ChartSpec `json:"charts"`
}

// SpendingReport is the top-level structure for the final JSON output.
type SpendingReport struct {
	Profile         DatasetProfile     `json:"profile"`
	Duplicates      []DuplicateRow     `json:"duplicates"`
	CitySpending    CitySpending       `json:"city_spending"`
	ExpenseByCard   ChartSpec          `json:"expense_by_card"`
	MonthlyByCard   ChartSpec          `json:"monthly_by_card"`
	DailyByGender   ChartSpec          `json:"daily_by_gender"`
	MonthlyByGender ChartSpec          `json:"monthly_by_gender"`
	EndOfMonth      EndOfMonthSpending `json:"end_of_month"`
	CityPresence    []CityPresence     `json:"city_presence,omitempty"`
	CitiesMatching  []string           `json:"cities_matching,omitempty"`
}
