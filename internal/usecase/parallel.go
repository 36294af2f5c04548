package usecase

import (
	"context"

	"card-spendings/internal/domain"

	"golang.org/x/sync/errgroup"
)

// GroupSumParallel computes the same result as GroupSum by summing
// contiguous partitions of records concurrently and merging the partial
// sums in partition order, which keeps first-seen group order intact.
func GroupSumParallel(ctx context.Context, records []domain.Transaction, keys []domain.Field, measure domain.Measure, partitions int) ([]domain.Group, error) {
	if len(keys) == 0 {
		return nil, ErrNoGroupingKeys
	}
	if measure == nil {
		measure = domain.AmountMeasure
	}
	if partitions > len(records) {
		partitions = len(records)
	}
	if partitions <= 1 {
		return GroupSum(records, keys, measure)
	}

	size := (len(records) + partitions - 1) / partitions
	partials := make([]*groupIndex, partitions)

	g, ctx := errgroup.WithContext(ctx)
	for p := 0; p < partitions; p++ {
		start := p * size
		end := min(start+size, len(records))
		if start >= end {
			partials[p] = newGroupIndex()
			continue
		}

		p, chunk := p, records[start:end]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			index, err := groupPartition(chunk, keys, measure)
			if err != nil {
				return err
			}
			partials[p] = index
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := newGroupIndex()
	for _, partial := range partials {
		merged.merge(partial)
	}
	return merged.result(), nil
}
