package dataset

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/obweb/internal/models"
	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/provider"
	"github.com/starford/obweb/internal/testutil"
)

func newDataset(t *testing.T, files map[string]string, onChange func(models.Change)) (string, *Dataset) {
	t.Helper()
	dir, src := testutil.TestData(t, files)
	reg, err := provider.Default()
	require.NoError(t, err)
	return dir, New(src, reg, Options{InitFile: "init.term", OnChange: onChange}, testutil.Logger())
}

func TestLoad(t *testing.T) {
	_, d := newDataset(t, map[string]string{"init.term": testutil.Sample}, nil)
	rep, err := d.Load()
	require.NoError(t, err)
	assert.Empty(t, rep.Warnings)
	assert.Equal(t, 4, d.Store().Len())
}

func TestLoad_InitFileFirst(t *testing.T) {
	_, d := newDataset(t, map[string]string{
		"a-extra.term": "(insert (profile (name Early) (description x)))",
		"init.term":    "(insert (profile (id BQAAAAAAAAAAAAAAAAAAAA) (name Five) (description x)))",
		"sub/z.term":   "(insert (profile (id CgAAAAAAAAAAAAAAAAAAAA) (name Ten) (description x)))",
	}, nil)
	_, err := d.Load()
	require.NoError(t, err)

	store := d.Store()
	assert.Equal(t, 3, store.Len())
	early := store.LookupByName("Early")
	require.Len(t, early, 1)
	assert.Equal(t, oid.FromUint64(11), early[0], "generated after explicit ids from every file")
}

func TestLoad_MissingInitFile(t *testing.T) {
	_, d := newDataset(t, map[string]string{"other.term": "(insert)"}, nil)
	_, err := d.Load()
	assert.Error(t, err)
	assert.Equal(t, 0, d.Store().Len())
}

func TestReload_SkipsUnchanged(t *testing.T) {
	dir, d := newDataset(t, map[string]string{"init.term": testutil.Sample}, nil)
	_, err := d.Load()
	require.NoError(t, err)
	before := d.Store()

	changed, _, err := d.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, before, d.Store())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.term"),
		[]byte("(insert (profile (name Solo) (description x)))"), 0o644))
	changed, rep, err := d.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, rep.Inserted, 1)
	assert.NotSame(t, before, d.Store())
	assert.Equal(t, 1, d.Store().Len())
	assert.Equal(t, 4, before.Len(), "old store is left intact for in-flight readers")
}

func TestReload_SyntaxErrorKeepsStore(t *testing.T) {
	dir, d := newDataset(t, map[string]string{"init.term": testutil.Sample}, nil)
	_, err := d.Load()
	require.NoError(t, err)
	before := d.Store()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.term"), []byte("(insert (profile"), 0o644))
	_, _, err = d.Reload()
	assert.Error(t, err)
	assert.Same(t, before, d.Store())
}

func TestOnChange_ArmedAfterBuild(t *testing.T) {
	var (
		mu      sync.Mutex
		changes []models.Change
	)
	_, d := newDataset(t, map[string]string{"init.term": testutil.Sample}, func(c models.Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	_, err := d.Load()
	require.NoError(t, err)

	mu.Lock()
	assert.Empty(t, changes, "load itself does not publish")
	mu.Unlock()

	d.Store().Evict(oid.FromUint64(1))
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, changes, 1)
	assert.Equal(t, models.ChangeEvicted, changes[0].Kind)
}
