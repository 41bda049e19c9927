package report

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexRecordAndQuery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	idx, err := OpenIndex(path)
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Record(ctx, []IndexEntry{
		{Date: "2025-06-01", ReportID: "id-1", Total: 100, Countable: 80, Topics: 3, Quotes: 2},
		{Date: "2025-06-02", ReportID: "id-2", Total: 50, Countable: 40, Topics: 2, Quotes: 1},
	}))

	e, err := idx.Day(ctx, "2025-06-01")
	require.NoError(t, err)
	require.Equal(t, "id-1", e.ReportID)
	require.Equal(t, 100, e.Total)
	require.Equal(t, 80, e.Countable)
	require.NotEmpty(t, e.UpdatedAt)

	// 重跑同一天按日期 UPSERT，不新增行
	require.NoError(t, idx.Record(ctx, []IndexEntry{
		{Date: "2025-06-01", ReportID: "id-1b", Total: 101, Countable: 81, Topics: 4, Quotes: 2},
	}))
	days, err := idx.Days(ctx)
	require.NoError(t, err)
	require.Len(t, days, 2)
	// 新日期在前
	require.Equal(t, "2025-06-02", days[0].Date)
	require.Equal(t, "id-1b", days[1].ReportID)
	require.Equal(t, 101, days[1].Total)
}

func TestIndexReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	idx, err := OpenIndex(path)
	require.NoError(t, err)
	require.NoError(t, idx.Record(ctx, []IndexEntry{
		{Date: "2025-06-01", ReportID: "id-1", Total: 10, Countable: 8, Topics: 1, Quotes: 1},
	}))
	require.NoError(t, idx.Close())

	idx, err = OpenIndex(path)
	require.NoError(t, err)
	defer idx.Close()
	e, err := idx.Day(ctx, "2025-06-01")
	require.NoError(t, err)
	require.Equal(t, 10, e.Total)

	_, err = idx.Day(ctx, "2025-06-03")
	require.ErrorIs(t, err, sql.ErrNoRows)
}
