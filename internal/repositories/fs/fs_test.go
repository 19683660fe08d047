package fs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/activity-service/internal/models"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceStore_PutGetList(t *testing.T) {
	store, err := NewSourceStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "zeta", "__Type__\n\nSort\n"))
	require.NoError(t, store.Put(ctx, "alpha", "__Type__\n\nSwipe\n"))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)

	got, err := store.Get(ctx, "zeta")
	require.NoError(t, err)
	assert.Equal(t, "__Type__\n\nSort\n", got)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestSourceStore_NameCannotEscapeDirectory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSourceStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "../escape", "x"))
	got, err := store.Get(ctx, "escape")
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestSourceStore_ListSkipsResultsInSharedDirectory(t *testing.T) {
	dir := t.TempDir()
	sources, err := NewSourceStore(dir)
	require.NoError(t, err)
	results, err := NewResultStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sources.Put(ctx, "quiz", "__Type__\n\nSort\n"))
	require.NoError(t, results.Save(ctx, &models.ResultRecord{
		ActivityName: "quiz",
		Markdown:     "# results\n",
		CompletedAt:  time.Now(),
	}))

	names, err := sources.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"quiz"}, names)
}

func TestResultStore_LastWriteWins(t *testing.T) {
	store, err := NewResultStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Latest(ctx, "quiz")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Save(ctx, &models.ResultRecord{
				ActivityName: "quiz",
				Markdown:     fmt.Sprintf("run %d", i),
				Correct:      i,
			})
		}(i)
	}
	wg.Wait()

	latest, err := store.Latest(ctx, "quiz")
	require.NoError(t, err)
	assert.Regexp(t, `^run \d$`, latest.Markdown)

	completed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.Save(ctx, &models.ResultRecord{
		ActivityName: "quiz",
		Type:         models.ActivitySortIntoBoxes,
		Markdown:     "final",
		Correct:      2,
		Total:        4,
		CompletedAt:  completed,
	}))

	latest, err = store.Latest(ctx, "quiz")
	require.NoError(t, err)
	assert.Equal(t, "final", latest.Markdown)
	assert.Equal(t, models.ActivitySortIntoBoxes, latest.Type)
	assert.Equal(t, 2, latest.Correct)
	assert.True(t, completed.Equal(latest.CompletedAt))

	list, err := store.List(ctx, "quiz", repositories.ResultFilters{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
