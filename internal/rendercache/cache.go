// Package rendercache memoizes compiled pages keyed by content fingerprint.
//
// The cache guarantees at-most-one concurrent compile per fingerprint:
// concurrent requests for the same uncached doc share a single compile and
// all receive the identical result. Unrelated fingerprints never contend on
// anything but the brief index lock — there is no global compile lock.
//
// Growth is unbounded by design: the document set is bounded and known, and
// entries are only dropped on process restart.
package rendercache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"git.home.luguber.info/inful/docsite/internal/render"
)

// Fingerprint identifies one version of one document's content.
type Fingerprint string

// Compute derives a fingerprint from zone identity, content path, and the
// current source bytes. A change to any component yields a different key.
func Compute(zoneName, contentPath string, source []byte) Fingerprint {
	h := sha256.New()
	h.Write([]byte(zoneName))
	h.Write([]byte{0})
	h.Write([]byte(contentPath))
	h.Write([]byte{0})
	h.Write(source)
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// Short returns an abbreviated form for logging.
func (f Fingerprint) Short() string {
	if len(f) > 12 {
		return string(f[:12])
	}
	return string(f)
}

// Page is a compiled document: the HTML plus the side tables collected while
// rendering. Pages are immutable once stored.
type Page struct {
	HTML        string
	TOC         []render.TOCEntry
	Warnings    []render.Warning
	Fingerprint Fingerprint
}

// CompileFunc produces a page on a cache miss.
type CompileFunc func() (*Page, error)

type call struct {
	wg   sync.WaitGroup
	page *Page
	err  error
}

// Cache is a concurrency-safe fingerprint-keyed page store.
type Cache struct {
	mu       sync.Mutex
	done     map[Fingerprint]*Page
	inflight map[Fingerprint]*call
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		done:     make(map[Fingerprint]*Page),
		inflight: make(map[Fingerprint]*call),
	}
}

// GetOrRender returns the cached page for fp, or runs compile to produce it.
// The hit result is true when the caller did not pay for the compile itself
// (stored entry or shared in-flight compile). A failed compile is never
// stored; the error is delivered to every caller sharing that attempt.
func (c *Cache) GetOrRender(fp Fingerprint, compile CompileFunc) (page *Page, hit bool, err error) {
	c.mu.Lock()
	if p, ok := c.done[fp]; ok {
		c.mu.Unlock()
		return p, true, nil
	}
	if inflight, ok := c.inflight[fp]; ok {
		c.mu.Unlock()
		inflight.wg.Wait()
		return inflight.page, true, inflight.err
	}
	cl := &call{}
	cl.wg.Add(1)
	c.inflight[fp] = cl
	c.mu.Unlock()

	cl.page, cl.err = compile()

	c.mu.Lock()
	delete(c.inflight, fp)
	if cl.err == nil {
		c.done[fp] = cl.page
	}
	c.mu.Unlock()
	cl.wg.Done()

	return cl.page, false, cl.err
}

// Contains reports whether fp is already compiled (testing/metrics hook).
func (c *Cache) Contains(fp Fingerprint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.done[fp]
	return ok
}

// Len returns the number of stored pages.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.done)
}

// Invalidate drops any stored page for the given fingerprints. Used by the
// daemon when a watched content file changes.
func (c *Cache) Invalidate(fps ...Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, fp := range fps {
		delete(c.done, fp)
	}
}
