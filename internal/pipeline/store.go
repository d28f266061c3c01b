package pipeline

import (
	"context"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

// multiStore fans a result set out to several stores in order, stopping at
// the first failure.
type multiStore []ResultStore

// MultiStore combines stores into one ResultStore. With a single store it is
// returned as-is.
func MultiStore(stores ...ResultStore) ResultStore {
	if len(stores) == 1 {
		return stores[0]
	}
	return multiStore(stores)
}

func (m multiStore) Store(ctx context.Context, rs domain.ResultSet) error {
	for _, s := range m {
		if err := s.Store(ctx, rs); err != nil {
			return err
		}
	}
	return nil
}
