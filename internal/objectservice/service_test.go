package objectservice_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/obweb/internal/apperr"
	"github.com/starford/obweb/internal/catalog"
	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/objectservice"
	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/testutil"
)

var (
	alice = oid.FromUint64(1).Token()
	bob   = oid.FromUint64(2).Token()
	post  = oid.FromUint64(3).Token()
)

func newService(t *testing.T) (*objectservice.Service, *knowledge.Ref) {
	t.Helper()
	store := testutil.TestStore(t, testutil.Sample)
	db := testutil.TestDB(t)
	require.NoError(t, catalog.Sync(db, store, testutil.Logger()))
	ref := knowledge.NewRef(store)
	return objectservice.NewService(ref, db), ref
}

func TestGetObject(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	d, err := svc.GetObject(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, "post", d.Tag)
	assert.Equal(t, "3", d.Decimal)
	assert.Equal(t, post, d.BranchRoot)
	assert.Empty(t, d.EditingPrior)
	assert.Equal(t, []objectservice.ReferenceItem{{Kind: "author", Target: alice}}, d.References)
	assert.Contains(t, d.Wood, "labeled trees everywhere")
	assert.Len(t, d.Checksum, 64)

	d, err = svc.GetObject(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, d.Names)
	assert.Len(t, d.Backlinks, 2)
}

func TestGetObject_Errors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.GetObject(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = svc.GetObject(ctx, oid.FromUint64(99).Token())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestWood_ChecksumMatchesDetail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	text, sum, err := svc.Wood(ctx, bob)
	require.NoError(t, err)
	d, err := svc.GetObject(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, d.Wood, text)
	assert.Equal(t, d.Checksum, sum)
}

func TestListObjects(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	items, total, err := svc.ListObjects(ctx, 2, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, items, 2)
	assert.Equal(t, bob, items[0].ID)
	assert.Equal(t, post, items[1].ID)

	items, total, err = svc.ListObjects(ctx, 0, 0, "profile")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	items, _, err = svc.ListObjects(ctx, 10, 50, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListObjects_HugeLimit(t *testing.T) {
	svc, _ := newService(t)

	items, total, err := svc.ListObjects(context.Background(), math.MaxInt, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, items, 3)
	assert.Equal(t, bob, items[0].ID)
}

func TestNamesAndLookup(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	assert.Equal(t, []string{alice}, svc.LookupName(ctx, "Alice", false))
	assert.Empty(t, svc.LookupName(ctx, "alice", false))
	assert.Equal(t, []string{alice}, svc.LookupName(ctx, "ALICE", true))

	names := svc.Names(ctx, "", 0)
	require.Len(t, names, 2)
	assert.Equal(t, "Alice", names[0].Name)
	assert.Equal(t, "Bob", names[1].Name)
}

func TestShortNameAndStats(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetShortName(ctx, bob, "bobby"))
	d, err := svc.GetObject(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, "bobby", d.ShortName)

	assert.ErrorIs(t, svc.SetShortName(ctx, oid.FromUint64(42).Token(), "x"), apperr.ErrNotFound)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Objects)
	assert.Equal(t, oid.FromUint64(4).Token(), st.MaxKnownID)
	assert.Equal(t, 2, st.Tags["profile"])
}

func TestLineageAndBacklinks(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	l, err := svc.Lineage(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, []string{post}, l.Chain)
	assert.True(t, l.Complete)

	bl, err := svc.Backlinks(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bl, 1)
	assert.Equal(t, "endorser", bl[0].Kind)
}

func TestReadsCurrentStore(t *testing.T) {
	svc, ref := newService(t)
	ref.Swap(knowledge.New())

	_, total, err := svc.ListObjects(context.Background(), 0, 0, "")
	require.NoError(t, err)
	assert.Zero(t, total)
}
