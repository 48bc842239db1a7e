package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtback/ots-tools/internal/mediawiki"
	"github.com/gtback/ots-tools/internal/mediawiki/mwtest"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func loggedIn(t *testing.T, srv *mwtest.Server) *mediawiki.Client {
	t.Helper()
	c, err := mediawiki.New(srv.APIURL(), mediawiki.Options{})
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background(), srv.Username, srv.Password))
	return c
}

func TestRun_DeletesAllAndOnlyMatches(t *testing.T) {
	srv := mwtest.NewServer(t)
	srv.SearchPageSize = 2
	srv.Seed("Proposal_1: Solar", "== Summary ==\nPanels")
	srv.Seed("Proposal_2: Wind", "== Summary ==\nTurbines")
	srv.Seed("Proposal_3: Bikes", "lanes")
	srv.Seed("List of Proposals", "* [[Proposal_1: Solar]] \n")
	srv.Seed("Main Page", "Welcome")
	srv.Seed("Budget", "Nothing to see")

	result := Run(context.Background(), loggedIn(t, srv), "Proposal ", "cleanup", quiet)
	require.NoError(t, result.Error)
	assert.True(t, result.Success)

	// "List of Proposals" matches "Proposal " only through its text.
	assert.Equal(t, []string{"List of Proposals", "Proposal_1: Solar", "Proposal_2: Wind", "Proposal_3: Bikes"}, result.Deleted)
	assert.Equal(t, result.Matched, result.Deleted)
	assert.Equal(t, []string{"Budget", "Main Page"}, srv.Titles())

	for _, call := range srv.Calls("delete") {
		assert.Equal(t, "cleanup", call.Params.Get("reason"))
	}
}

func TestRun_SearchesBeforeDeleting(t *testing.T) {
	srv := mwtest.NewServer(t)
	srv.SearchPageSize = 1
	for _, title := range []string{"Proposal_1: a", "Proposal_2: b", "Proposal_3: c"} {
		srv.Seed(title, "x")
	}

	result := Run(context.Background(), loggedIn(t, srv), "Proposal_", "", quiet)
	require.NoError(t, result.Error)
	assert.Len(t, result.Deleted, 3)

	var actions []string
	for _, call := range srv.Calls("") {
		if call.Action == "query" && call.Params.Get("list") == "search" {
			actions = append(actions, "search")
		}
		if call.Action == "delete" {
			actions = append(actions, "delete")
		}
	}
	assert.Equal(t, []string{"search", "search", "search", "delete", "delete", "delete"}, actions)
}

func TestRun_NoMatches(t *testing.T) {
	srv := mwtest.NewServer(t)
	srv.Seed("Main Page", "Welcome")

	result := Run(context.Background(), loggedIn(t, srv), "Proposal ", "", quiet)
	require.NoError(t, result.Error)
	assert.Empty(t, result.Deleted)
	assert.Empty(t, srv.Calls("delete"))
}

type fakeRemover struct {
	hits      []mediawiki.SearchResult
	searchErr error
	deleteErr map[string]error
	deleted   []string
}

func (f *fakeRemover) Search(context.Context, string) ([]mediawiki.SearchResult, error) {
	return f.hits, f.searchErr
}

func (f *fakeRemover) Delete(_ context.Context, title, _ string) error {
	if err := f.deleteErr[title]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, title)
	return nil
}

func TestRun_DeleteFailureStops(t *testing.T) {
	remover := &fakeRemover{
		hits: []mediawiki.SearchResult{{Title: "A"}, {Title: "B"}, {Title: "C"}},
		deleteErr: map[string]error{
			"B": &mediawiki.APIError{Code: "permissiondenied", Info: "no", Action: "delete"},
		},
	}

	result := Run(context.Background(), remover, "x", "", quiet)
	require.Error(t, result.Error)
	assert.True(t, mediawiki.IsAPIError(result.Error, "permissiondenied"))
	assert.Equal(t, []string{"A"}, result.Deleted)
	assert.Equal(t, []string{"A"}, remover.deleted)
	assert.False(t, result.Success)
}

func TestRun_SearchFailure(t *testing.T) {
	remover := &fakeRemover{searchErr: errors.New("timeout")}

	result := Run(context.Background(), remover, "x", "", nil)
	require.ErrorContains(t, result.Error, "failed to search wiki: timeout")
	assert.Empty(t, remover.deleted)
}

func TestRun_DuplicateHitsDeletedOnce(t *testing.T) {
	remover := &fakeRemover{hits: []mediawiki.SearchResult{{Title: "A"}, {Title: "A"}, {Title: "B"}}}

	result := Run(context.Background(), remover, "x", "", quiet)
	require.NoError(t, result.Error)
	assert.Equal(t, []string{"A", "B"}, remover.deleted)
}

func TestRun_Cancelled(t *testing.T) {
	remover := &fakeRemover{hits: []mediawiki.SearchResult{{Title: "A"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Run(ctx, remover, "x", "", quiet)
	require.ErrorIs(t, result.Error, context.Canceled)
	assert.Empty(t, remover.deleted)
}
