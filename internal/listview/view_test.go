package listview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressing-admin/pkg/pagination"
)

func TestFiltersResetPageAndReachFetcher(t *testing.T) {
	var got []pagination.Params
	view := New(func(_ context.Context, p pagination.Params) (*pagination.Page[string], error) {
		got = append(got, p)
		return &pagination.Page[string]{Data: []string{"a"}, Meta: &pagination.Meta{Page: p.Page, Total: 30, LastPage: 3}}, nil
	}, 10)
	ctx := context.Background()

	require.NoError(t, view.SetPage(ctx, 3))
	require.NoError(t, view.SetFilter(ctx, "statut", "en_attente"))
	require.NoError(t, view.SetSearch(ctx, "diallo"))
	require.NoError(t, view.SetFilter(ctx, "statut", ""))

	require.Len(t, got, 4)
	assert.Equal(t, 3, got[0].Page)
	assert.Equal(t, 1, got[1].Page)
	assert.Equal(t, "en_attente", got[1].Filters["statut"])
	assert.Equal(t, "diallo", got[2].Search)
	assert.NotContains(t, got[3].Filters, "statut")

	snap := view.Snapshot()
	assert.Equal(t, []string{"a"}, snap.Items)
	assert.Equal(t, 10, snap.PerPage)
	assert.False(t, snap.Loading)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	view := New(func(_ context.Context, p pagination.Params) (*pagination.Page[string], error) {
		if p.Search == "slow" {
			close(started)
			<-release
			return &pagination.Page[string]{Data: []string{"stale"}}, nil
		}
		return &pagination.Page[string]{Data: []string{"fresh"}}, nil
	}, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, view.SetSearch(ctx, "slow"))
	}()
	<-started
	require.NoError(t, view.SetSearch(ctx, "fast"))
	close(release)
	wg.Wait()

	assert.Equal(t, []string{"fresh"}, view.Snapshot().Items)
}

func TestErrorKeepsItemsAndRetryRecovers(t *testing.T) {
	fail := false
	view := New(func(context.Context, pagination.Params) (*pagination.Page[int], error) {
		if fail {
			return nil, errors.New("backend down")
		}
		return &pagination.Page[int]{Data: []int{1, 2}}, nil
	}, 0)
	ctx := context.Background()

	require.NoError(t, view.Refresh(ctx))
	fail = true
	require.Error(t, view.Refresh(ctx))
	snap := view.Snapshot()
	assert.Equal(t, "backend down", snap.Error)
	assert.Equal(t, []int{1, 2}, snap.Items)

	fail = false
	require.NoError(t, view.Retry(ctx))
	assert.Empty(t, view.Snapshot().Error)
	assert.NoError(t, view.Err())
}

func TestConfigureDropsEmptyFilters(t *testing.T) {
	view := New(func(context.Context, pagination.Params) (*pagination.Page[int], error) { return nil, nil }, 0)
	view.Configure(pagination.Params{Page: 0, PerPage: 500, Filters: map[string]string{"a": "1", "b": ""}})
	snap := view.Snapshot()
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, pagination.MaxPerPage, snap.PerPage)
	assert.Equal(t, map[string]string{"a": "1"}, snap.Filters)
	assert.Empty(t, snap.Items)
}
