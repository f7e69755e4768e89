package registry

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/store"
)

func buildTestRegistry(t *testing.T, calls *atomic.Int64, ttl time.Duration) *Registry {
	t.Helper()
	build := func(tenantID string) (*Handle, error) {
		calls.Add(1)
		s, err := store.Open(store.Options{Dir: t.TempDir()}, arbor.NewLogger())
		if err != nil {
			return nil, err
		}
		t.Cleanup(func() { _ = s.Close() })
		return &Handle{Store: s}, nil
	}

	config := Config{Build: build}
	if ttl > 0 {
		config.TTL = ttl
		config.SweepInterval = time.Millisecond
	}
	return New(config, arbor.NewLogger())
}

func TestRegistrySingleFlight(t *testing.T) {
	var calls atomic.Int64
	registry := buildTestRegistry(t, &calls, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := registry.GetOrInit("alpha")
			errs[i] = err
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.EqualValues(t, 1, calls.Load())
}

func TestRegistryEvictsIdleEntries(t *testing.T) {
	var calls atomic.Int64
	registry := buildTestRegistry(t, &calls, time.Millisecond)

	_, err := registry.GetOrInit("alpha")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	evicted := registry.EvictIdle()
	assert.Equal(t, 1, evicted)
	assert.Empty(t, registry.ListTenants())
}

func TestRegistryCapacityReached(t *testing.T) {
	var calls atomic.Int64
	registry := buildTestRegistry(t, &calls, 0)
	registry.config.MaxEntries = 1

	_, err := registry.GetOrInit("alpha")
	require.NoError(t, err)

	_, err = registry.GetOrInit("beta")
	require.Error(t, err)
	assert.Equal(t, docxerr.CapacityReached, docxerr.KindOf(err))
	assert.EqualValues(t, 1, calls.Load())
}

func TestRegistryRetriesAfterBuildFailure(t *testing.T) {
	var attempts atomic.Int64
	build := func(tenantID string) (*Handle, error) {
		n := attempts.Add(1)
		if n == 1 {
			return nil, assertErr
		}
		s, err := store.Open(store.Options{Dir: t.TempDir()}, arbor.NewLogger())
		if err != nil {
			return nil, err
		}
		t.Cleanup(func() { _ = s.Close() })
		return &Handle{Store: s}, nil
	}
	registry := New(Config{Build: build}, arbor.NewLogger())

	_, err := registry.GetOrInit("alpha")
	require.Error(t, err)
	assert.Equal(t, docxerr.BuildFailed, docxerr.KindOf(err))

	handle, err := registry.GetOrInit("alpha")
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.EqualValues(t, 2, attempts.Load())
}

func TestRegistryNoEvictionWithZeroTTL(t *testing.T) {
	var calls atomic.Int64
	registry := buildTestRegistry(t, &calls, 0)

	_, err := registry.GetOrInit("alpha")
	require.NoError(t, err)

	evicted := registry.EvictIdle()
	assert.Equal(t, 0, evicted)
	assert.Len(t, registry.ListTenants(), 1)
}

var assertErr = docxerr.New(docxerr.StorageFailure, "forced build failure")

func TestRegistryDeleteTenantClosesHandleAndRemovesDir(t *testing.T) {
	base := t.TempDir()
	dir := base + "/alpha"
	build := func(tenantID string) (*Handle, error) {
		s, err := store.Open(store.Options{Dir: dir}, arbor.NewLogger())
		if err != nil {
			return nil, err
		}
		return &Handle{Store: s}, nil
	}
	registry := New(Config{Build: build, TenantDir: func(tenantID string) string {
		if tenantID != "alpha" {
			return ""
		}
		return dir
	}}, arbor.NewLogger())

	_, err := registry.GetOrInit("alpha")
	require.NoError(t, err)
	require.DirExists(t, dir)

	require.NoError(t, registry.DeleteTenant("alpha"))
	assert.NoDirExists(t, dir)
	assert.Empty(t, registry.ListTenants())

	// A second build after deletion succeeds against a fresh directory.
	_, err = registry.GetOrInit("alpha")
	require.NoError(t, err)
	require.DirExists(t, dir)
}

func TestRegistryDeleteTenantWithoutDirConfiguredOnlyEvicts(t *testing.T) {
	var calls atomic.Int64
	registry := buildTestRegistry(t, &calls, 0)

	_, err := registry.GetOrInit("alpha")
	require.NoError(t, err)

	require.NoError(t, registry.DeleteTenant("alpha"))
	assert.Empty(t, registry.ListTenants())
}

func TestRegistryDeleteTenantNeverInitializedIsNoop(t *testing.T) {
	var calls atomic.Int64
	registry := buildTestRegistry(t, &calls, 0)

	require.NoError(t, registry.DeleteTenant("never-existed"))
}
