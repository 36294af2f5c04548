package usecase

import (
	"context"
	"fmt"
	"strconv"

	"card-spendings/internal/datefeature"
	"card-spendings/internal/domain"
	"card-spendings/internal/logger"
)

// Options tunes the spending analysis.
type Options struct {
	DateLayout     string
	Workers        int
	TopN           int
	BottomN        int
	TopCities      int
	EndOfMonthDays []int
	Cities         []string
	CityPrefixes   []string
	CityMinLength  int
}

// DefaultOptions mirrors the questions asked of the dataset.
func DefaultOptions() Options {
	return Options{
		DateLayout:     datefeature.DefaultLayout,
		Workers:        1,
		TopN:           10,
		BottomN:        5,
		TopCities:      10,
		EndOfMonthDays: []int{29, 30, 31},
	}
}

// SpendingAnalysisUseCase orchestrates the spending analysis.
type SpendingAnalysisUseCase struct {
	repo      TransactionRepository
	extractor datefeature.Extractor
	opts      Options
}

// NewSpendingAnalysisUseCase creates a new instance of the usecase.
func NewSpendingAnalysisUseCase(repo TransactionRepository, opts Options) *SpendingAnalysisUseCase {
	return &SpendingAnalysisUseCase{
		repo:      repo,
		extractor: datefeature.New(opts.DateLayout),
		opts:      opts,
	}
}

// Analyze loads the dataset at path and answers the spending questions.
func (uc *SpendingAnalysisUseCase) Analyze(ctx context.Context, path string) (*domain.SpendingReport, error) {
	log := logger.FromContext(ctx)

	// Step 1: Data Ingestion
	raw, err := uc.repo.GetTransactions(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("could not get transactions: %w", err)
	}
	log.Info().Str("path", path).Int("rows", len(raw)).Msg("transactions loaded")

	// Step 2: Preprocessing
	records := NormalizeCities(raw)
	records, err = uc.extractor.Apply(records)
	if err != nil {
		return nil, fmt.Errorf("could not extract date features: %w", err)
	}
	log.Debug().Str("layout", uc.extractor.Layout()).Msg("date features extracted")

	report := domain.SpendingReport{
		Duplicates: FindDuplicates(records),
	}
	if n := len(report.Duplicates); n > 0 {
		log.Warn().Int("duplicates", n).Msg("duplicate rows found")
	}

	report.Profile, err = Profile(records, uc.opts.TopCities)
	if err != nil {
		return nil, fmt.Errorf("could not profile transactions: %w", err)
	}

	// Step 3: Business questions
	if report.CitySpending, err = uc.citySpending(ctx, records); err != nil {
		return nil, err
	}

	expense, err := uc.group(ctx, records, domain.FieldExpenseType, domain.FieldCardType)
	if err != nil {
		return nil, err
	}
	report.ExpenseByCard = barChart("Amount spent per expense type per card type", domain.FieldExpenseType, domain.FieldCardType, expense)

	monthly, err := uc.group(ctx, records, domain.FieldMonth, domain.FieldCardType)
	if err != nil {
		return nil, err
	}
	report.MonthlyByCard = domain.ChartSpec{
		Kind:         domain.ChartLine,
		Title:        "Total amount spent with each card type per month",
		CategoryAxis: domain.FieldMonth,
		ValueAxis:    "Amount",
		Series:       domain.FieldCardType,
		Data:         monthly,
	}

	daily, err := uc.group(ctx, records, domain.FieldDayName, domain.FieldGender)
	if err != nil {
		return nil, err
	}
	report.DailyByGender = barChart("Amount spent per weekday per gender", domain.FieldDayName, domain.FieldGender, daily)

	monthlyGender, err := uc.group(ctx, records, domain.FieldMonth, domain.FieldGender)
	if err != nil {
		return nil, err
	}
	report.MonthlyByGender = barChart("Amount spent per month per gender", domain.FieldMonth, domain.FieldGender, monthlyGender)

	if report.EndOfMonth, err = uc.endOfMonth(ctx, records); err != nil {
		return nil, err
	}

	// Step 4: City lookups
	if len(uc.opts.Cities) > 0 {
		report.CityPresence = CityPresence(records, uc.opts.Cities)
	}
	if len(uc.opts.CityPrefixes) > 0 {
		report.CitiesMatching = CitiesMatching(records, uc.opts.CityPrefixes, uc.opts.CityMinLength)
	}

	log.Info().
		Int("cities", report.Profile.DistinctValues[domain.FieldCity]).
		Str("total", report.Profile.Amount.Total.String()).
		Msg("analysis complete")
	return &report, nil
}

// citySpending ranks cities by total spend and compares male and female
// spending per city. A positive difference means men spent more.
func (uc *SpendingAnalysisUseCase) citySpending(ctx context.Context, records []domain.Transaction) (domain.CitySpending, error) {
	totals, err := uc.group(ctx, records, domain.FieldCity)
	if err != nil {
		return domain.CitySpending{}, err
	}

	byGender, err := uc.group(ctx, records, domain.FieldCity, domain.FieldGender)
	if err != nil {
		return domain.CitySpending{}, err
	}
	diffs, err := Difference(byGender, string(domain.GenderMale), string(domain.GenderFemale))
	if err != nil {
		return domain.CitySpending{}, fmt.Errorf("could not compare city spending by gender: %w", err)
	}

	var male, female []domain.GroupDifference
	for _, d := range diffs {
		switch {
		case d.Difference.IsPositive():
			male = append(male, d)
		case d.Difference.IsNegative():
			female = append(female, d)
		}
	}

	return domain.CitySpending{
		Totals: SortGroups(totals, true),
		GenderGap: domain.GenderGap{
			Differences:           diffs,
			MaleDominatedTop:      head(SortDifferences(male, true), uc.opts.TopN),
			MaleDominatedBottom:   head(SortDifferences(male, false), uc.opts.BottomN),
			FemaleDominatedTop:    head(SortDifferences(female, false), uc.opts.TopN),
			FemaleDominatedBottom: head(SortDifferences(female, true), uc.opts.BottomN),
		},
	}, nil
}

// endOfMonth groups the spending on the closing days of each month by
// (day, month, expense type) and lays out one chart per day.
func (uc *SpendingAnalysisUseCase) endOfMonth(ctx context.Context, records []domain.Transaction) (domain.EndOfMonthSpending, error) {
	days := make([]string, len(uc.opts.EndOfMonthDays))
	for i, d := range uc.opts.EndOfMonthDays {
		days[i] = strconv.Itoa(d)
	}

	subset, err := Subset(records, domain.FieldDayNumber, days...)
	if err != nil {
		return domain.EndOfMonthSpending{}, err
	}

	groups, err := uc.group(ctx, subset, domain.FieldDayNumber, domain.FieldMonth, domain.FieldExpenseType)
	if err != nil {
		return domain.EndOfMonthSpending{}, err
	}

	result := domain.EndOfMonthSpending{
		Days:   uc.opts.EndOfMonthDays,
		Groups: groups,
		Charts: make([]domain.ChartSpec, 0, len(days)),
	}
	for _, day := range days {
		title := fmt.Sprintf("Expenses of various expense types for day %s of each month", day)
		result.Charts = append(result.Charts, barChart(title, domain.FieldMonth, domain.FieldExpenseType, FilterGroups(groups, 0, day)))
	}
	return result, nil
}

func (uc *SpendingAnalysisUseCase) group(ctx context.Context, records []domain.Transaction, keys ...domain.Field) ([]domain.Group, error) {
	groups, err := GroupSumParallel(ctx, records, keys, domain.AmountMeasure, uc.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("could not group by %v: %w", keys, err)
	}
	return groups, nil
}

func barChart(title string, category, series domain.Field, data []domain.Group) domain.ChartSpec {
	return domain.ChartSpec{
		Kind:         domain.ChartBar,
		Title:        title,
		CategoryAxis: category,
		ValueAxis:    "Amount",
		Series:       series,
		ShowValues:   true,
		Data:         data,
	}
}
