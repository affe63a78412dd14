package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubcite/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "pubcite.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	citations := []types.Citation{
		{ID: "c1", RawText: "[1]", ReferenceNumber: 1},
		{ID: "c2", RawText: "(Marcus, 2019)", StartOffset: 10, EndOffset: 24, IsOrphaned: true},
	}
	refs := []types.ReferenceEntry{
		{ID: "r1", Number: 1, Authors: []string{"Marcus, Gary"}, Year: "2019"},
		{ID: "r2", Number: 2, Authors: []string{"John Smith", "Ada Jones"}, Year: "2020"},
	}

	require.NoError(t, s.SaveSnapshot(ctx, citations, refs))

	gotCitations, gotRefs, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, citations, gotCitations)
	assert.Equal(t, refs, gotRefs)
}

func TestSaveSnapshotReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx,
		[]types.Citation{{ID: "c1", RawText: "[1]"}},
		[]types.ReferenceEntry{{ID: "r1", Number: 1, Authors: []string{"A B"}, Year: "2001"}}))
	require.NoError(t, s.SaveSnapshot(ctx,
		[]types.Citation{{ID: "c2", RawText: "[2]"}},
		nil))

	citations, refs, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Equal(t, "c2", citations[0].ID)
	assert.Empty(t, refs)
}

func TestChangesRoundTripAndClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	four := 4
	changes := []types.ChangeRecord{
		{CitationID: "c1", OldNumber: 5, NewNumber: &four, OldText: "[5]", NewText: "[4]", ChangeType: types.ChangeRenumber},
		{CitationID: "", OldNumber: 9, NewNumber: nil, OldText: "[9]", NewText: "[9]", ChangeType: types.ChangeDeleted},
	}

	require.NoError(t, s.SaveChanges(ctx, changes))

	got, err := s.LoadChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, changes, got)

	// Deleted record keeps its nil new number through the round trip.
	require.Nil(t, got[1].NewNumber)

	require.NoError(t, s.ClearChanges(ctx))
	got, err = s.LoadChanges(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestImportYAML(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fixture := `
citations:
  - id: c1
    raw_text: "[3]"
references:
  - id: r1
    number: 1
    authors: ["Marcus, Gary"]
    year: "2019"
  - id: r2
    number: 2
    authors: ["Chen, Wei"]
    year: "2021"
changes:
  - citation_id: c1
    old_number: 3
    new_number: null
    old_text: "[3]"
    new_text: "[3]"
    change_type: deleted
`
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	citations, refs, changes, err := s.ImportYAML(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, citations)
	assert.Equal(t, 2, refs)
	assert.Equal(t, 1, changes)

	_, gotRefs, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, gotRefs, 2)
	assert.Equal(t, []string{"Marcus, Gary"}, gotRefs[0].Authors)

	gotChanges, err := s.LoadChanges(ctx)
	require.NoError(t, err)
	require.Len(t, gotChanges, 1)
	assert.Equal(t, types.ChangeDeleted, gotChanges[0].ChangeType)
	assert.Nil(t, gotChanges[0].NewNumber)
}

func TestReadFixtureMissingFile(t *testing.T) {
	_, err := ReadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
