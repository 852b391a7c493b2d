package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/models"
	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/sse"
	"github.com/starford/obweb/internal/testutil"
)

func testConfig(dir string) *Config {
	cfg := NewDefaultConfig()
	cfg.Data.Path = dir
	cfg.Catalog.Path = filepath.Join(dir, "catalog.db")
	return cfg
}

func nextEvent(t *testing.T, ch chan []byte, eventType string) string {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-ch:
			if s := string(msg); strings.HasPrefix(s, "event: "+eventType+"\n") {
				return s
			}
		case <-timeout:
			t.Fatalf("no %s event", eventType)
			return ""
		}
	}
}

func TestReloader(t *testing.T) {
	dir, _ := testutil.TestData(t, map[string]string{"init.term": testutil.Sample})
	data, err := openDataset(testConfig(dir), testutil.Logger(), nil)
	require.NoError(t, err)

	db := testutil.TestDB(t)
	broker := sse.NewBroker(time.Hour)
	defer broker.Close()
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	reload := reloader(data.ds, db, broker, testutil.Logger())

	extra := "(insert (profile (id CgAAAAAAAAAAAAAAAAAAAA) (name Dora) (description late)))\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "more.term"), []byte(extra), 0o644))
	reload([]string{"more.term"})

	msg := nextEvent(t, ch, sse.TypeStoreReloaded)
	payload := msg[strings.Index(msg, "data: ")+len("data: "):]
	var ev reloadEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(payload)), &ev))
	assert.Len(t, ev.ReloadID, 36)
	assert.Equal(t, []string{"more.term"}, ev.Paths)
	assert.Equal(t, 5, ev.Objects)

	sum, err := db.GetChecksum(oid.FromUint64(10).Token())
	require.NoError(t, err)
	assert.NotEmpty(t, sum, "catalog synced after reload")

	// Unchanged data publishes nothing.
	reload([]string{"more.term"})
	select {
	case msg := <-ch:
		t.Errorf("unexpected event %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestReloader_KeepsStoreOnError(t *testing.T) {
	dir, _ := testutil.TestData(t, map[string]string{"init.term": testutil.Sample})
	data, err := openDataset(testConfig(dir), testutil.Logger(), nil)
	require.NoError(t, err)
	before := data.ds.Store()

	broker := sse.NewBroker(time.Hour)
	defer broker.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.term"), []byte("(insert"), 0o644))
	reloader(data.ds, testutil.TestDB(t), broker, testutil.Logger())([]string{"init.term"})

	assert.Same(t, before, data.ds.Store())
}

func TestChangeHook(t *testing.T) {
	store := testutil.TestStore(t, testutil.Sample)
	db := testutil.TestDB(t)
	broker := sse.NewBroker(time.Hour)
	defer broker.Close()
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	hook := changeHook(func() *knowledge.Store { return store }, db, broker, testutil.Logger())
	hook(models.Change{Kind: models.ChangeConsidered, Token: oid.FromUint64(1).Token(), Tag: "profile"})

	msg := nextEvent(t, ch, sse.TypeObjectConsidered)
	assert.Contains(t, msg, oid.FromUint64(1).Token())
	sum, err := db.GetChecksum(oid.FromUint64(1).Token())
	require.NoError(t, err)
	assert.NotEmpty(t, sum)
}
