// internal/catalog/taxonomy_test.go
package catalog

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftcraft/storefront/internal/kvstore"
	"github.com/giftcraft/storefront/internal/strapi"
)

func taxonomyStub() *stubCMS {
	return &stubCMS{handler: func(path string, query url.Values) (*strapi.Response, error) {
		switch path {
		case "materials":
			return taxonomyResponse("Wood", "Resin"), nil
		case "occasions":
			return taxonomyResponse("Birthday"), nil
		case "categories":
			return taxonomyResponse("Keepsakes"), nil
		}
		return taxonomyResponse(), nil
	}}
}

func TestTaxonomiesFetchOncePerTTLWindow(t *testing.T) {
	cms := taxonomyStub()
	store := kvstore.New(t.TempDir())
	tax := NewTaxonomies(cms, store, 24*time.Hour)

	first, err := tax.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, first.Materials, 2)
	assert.Len(t, first.Occasions, 1)
	assert.Len(t, first.Categories, 1)
	assert.Equal(t, 3, cms.callCount())

	second, err := tax.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 3, cms.callCount(), "second call within TTL must not hit the network")
}

func TestTaxonomiesInvalidateForcesRefetch(t *testing.T) {
	cms := taxonomyStub()
	store := kvstore.New(t.TempDir())
	tax := NewTaxonomies(cms, store, 24*time.Hour)

	_, err := tax.GetAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, cms.callCount())

	tax.Invalidate()

	_, err = tax.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, cms.callCount(), "call after invalidation must refetch")
}

func TestTaxonomiesPersistedSnapshotSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	cms := taxonomyStub()

	warm := NewTaxonomies(cms, kvstore.New(dir), 24*time.Hour)
	_, err := warm.GetAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, cms.callCount())

	// A fresh instance sharing the store reads the snapshot, no network.
	cold := NewTaxonomies(cms, kvstore.New(dir), 24*time.Hour)
	set, err := cold.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, set.Materials, 2)
	assert.Equal(t, 3, cms.callCount())
}

func TestTaxonomiesExpiredSnapshotRefetches(t *testing.T) {
	dir := t.TempDir()
	cms := taxonomyStub()

	warm := NewTaxonomies(cms, kvstore.New(dir), 24*time.Hour)
	_, err := warm.GetAll(context.Background())
	require.NoError(t, err)

	cold := NewTaxonomies(cms, kvstore.New(dir), 24*time.Hour)
	cold.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = cold.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, cms.callCount(), "expired snapshot must refetch")
}

func TestTaxonomiesPartialFailureYieldsEmptyList(t *testing.T) {
	cms := &stubCMS{handler: func(path string, query url.Values) (*strapi.Response, error) {
		if path == "occasions" {
			return errorResponse(500)
		}
		return taxonomyResponse("Wood"), nil
	}}
	tax := NewTaxonomies(cms, kvstore.New(t.TempDir()), 24*time.Hour)

	set, err := tax.GetAll(context.Background())

	require.NoError(t, err, "one failed taxonomy must not fail the whole call")
	assert.Len(t, set.Materials, 1)
	assert.Empty(t, set.Occasions)
	assert.Len(t, set.Categories, 1)
}
