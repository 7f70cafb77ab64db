package verify

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/dictionary"
)

type fakeSource struct {
	attached bool
	count    int
}

func (s *fakeSource) Attached() bool { return s.attached }

func (s *fakeSource) Load() (dictionary.Collection, []int) {
	collection := dictionary.Collection{}
	for i := 1; i <= s.count; i++ {
		collection[strconv.Itoa(i)] = dictionary.RawPage{}
	}
	return collection, nil
}

type fakeCounter struct {
	count int
	err   error
}

func (c *fakeCounter) Count(context.Context) (int, error) { return c.count, c.err }

func TestCheckReportsBothSides(t *testing.T) {
	t.Parallel()

	report := Check(
		context.Background(),
		&fakeSource{attached: true, count: 3},
		&fakeCounter{count: 3},
		zap.NewNop(),
	)

	require.True(t, report.CollectionAttached)
	require.Equal(t, 3, report.CollectionCount)
	require.True(t, report.DatabaseAttached)
	require.Equal(t, 3, report.DatabaseCount)
}

func TestCheckTreatsCountErrorAsDetached(t *testing.T) {
	t.Parallel()

	report := Check(
		context.Background(),
		&fakeSource{attached: true, count: 3},
		&fakeCounter{err: errors.New("connection refused")},
		zap.NewNop(),
	)

	require.False(t, report.DatabaseAttached)
	require.Equal(t, 0, report.DatabaseCount)
}

func TestStatusLabels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		report     Report
		collection string
		database   string
	}{
		{
			name:       "both empty",
			report:     Report{},
			collection: StatusMissing,
			database:   StatusMissing,
		},
		{
			name:       "in sync",
			report:     Report{CollectionAttached: true, CollectionCount: 5, DatabaseAttached: true, DatabaseCount: 5},
			collection: StatusReady,
			database:   StatusReady,
		},
		{
			name:       "database behind",
			report:     Report{CollectionAttached: true, CollectionCount: 5, DatabaseAttached: true, DatabaseCount: 3},
			collection: StatusAsync,
			database:   StatusAsync,
		},
		{
			name:       "collection only",
			report:     Report{CollectionAttached: true, CollectionCount: 5},
			collection: StatusAsync,
			database:   StatusMissing,
		},
		{
			name:       "attached but empty collection",
			report:     Report{CollectionAttached: true, DatabaseAttached: true, DatabaseCount: 2},
			collection: StatusMissing,
			database:   StatusAsync,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.collection, tc.report.CollectionStatus())
			require.Equal(t, tc.database, tc.report.DatabaseStatus())
		})
	}
}
