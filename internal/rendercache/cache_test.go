package rendercache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_SensitiveToEveryComponent(t *testing.T) {
	base := Compute("reference", "db/raw-query.md", []byte("# Title"))
	assert.NotEqual(t, base, Compute("guides", "db/raw-query.md", []byte("# Title")))
	assert.NotEqual(t, base, Compute("reference", "other.md", []byte("# Title")))
	assert.NotEqual(t, base, Compute("reference", "db/raw-query.md", []byte("# Changed")))
	assert.Equal(t, base, Compute("reference", "db/raw-query.md", []byte("# Title")))
}

func TestGetOrRender_MissThenHit(t *testing.T) {
	c := New()
	fp := Compute("z", "p.md", []byte("src"))

	compiles := 0
	compile := func() (*Page, error) {
		compiles++
		return &Page{HTML: "<p>hi</p>", Fingerprint: fp}, nil
	}

	first, hit, err := c.GetOrRender(fp, compile)
	require.NoError(t, err)
	require.False(t, hit)

	second, hit, err := c.GetOrRender(fp, compile)
	require.NoError(t, err)
	require.True(t, hit)
	require.Same(t, first, second)
	require.Equal(t, 1, compiles)
}

func TestGetOrRender_ChangedSourceIsMiss(t *testing.T) {
	c := New()
	v1 := Compute("z", "p.md", []byte("one"))
	v2 := Compute("z", "p.md", []byte("two"))

	_, _, err := c.GetOrRender(v1, func() (*Page, error) { return &Page{HTML: "1"}, nil })
	require.NoError(t, err)

	page, hit, err := c.GetOrRender(v2, func() (*Page, error) { return &Page{HTML: "2"}, nil })
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "2", page.HTML)
}

func TestGetOrRender_FailedCompileNotCached(t *testing.T) {
	c := New()
	fp := Compute("z", "p.md", []byte("src"))
	boom := errors.New("boom")

	_, _, err := c.GetOrRender(fp, func() (*Page, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	require.False(t, c.Contains(fp))

	// A later attempt gets a fresh compile.
	page, hit, err := c.GetOrRender(fp, func() (*Page, error) { return &Page{HTML: "ok"}, nil })
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "ok", page.HTML)
}

func TestGetOrRender_ConcurrentCallersShareOneCompile(t *testing.T) {
	c := New()
	fp := Compute("z", "p.md", []byte("src"))

	var compiles atomic.Int64
	gate := make(chan struct{})
	compile := func() (*Page, error) {
		compiles.Add(1)
		<-gate
		return &Page{HTML: "<p>once</p>", Fingerprint: fp}, nil
	}

	const n = 16
	var wg sync.WaitGroup
	pages := make([]*Page, n)
	started := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			p, _, err := c.GetOrRender(fp, compile)
			require.NoError(t, err)
			pages[i] = p
		}(i)
	}
	for i := 0; i < n; i++ {
		<-started
	}
	close(gate)
	wg.Wait()

	require.Equal(t, int64(1), compiles.Load())
	for i := 1; i < n; i++ {
		require.Same(t, pages[0], pages[i])
	}
}

func TestGetOrRender_UnrelatedFingerprintsCompileInParallel(t *testing.T) {
	c := New()
	fpA := Compute("z", "a.md", []byte("a"))
	fpB := Compute("z", "b.md", []byte("b"))

	aStarted := make(chan struct{})
	aRelease := make(chan struct{})
	go func() {
		_, _, _ = c.GetOrRender(fpA, func() (*Page, error) {
			close(aStarted)
			<-aRelease
			return &Page{HTML: "a"}, nil
		})
	}()
	<-aStarted

	// While A's compile is blocked, B must still complete.
	page, _, err := c.GetOrRender(fpB, func() (*Page, error) { return &Page{HTML: "b"}, nil })
	require.NoError(t, err)
	require.Equal(t, "b", page.HTML)
	close(aRelease)
}

func TestInvalidate(t *testing.T) {
	c := New()
	fp := Compute("z", "p.md", []byte("src"))
	_, _, err := c.GetOrRender(fp, func() (*Page, error) { return &Page{HTML: "x"}, nil })
	require.NoError(t, err)
	require.True(t, c.Contains(fp))

	c.Invalidate(fp)
	require.False(t, c.Contains(fp))
	require.Equal(t, 0, c.Len())
}
