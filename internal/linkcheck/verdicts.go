package linkcheck

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Verdict is one external link's cached verification result.
type Verdict struct {
	URL         string    `json:"url"`
	Status      int       `json:"status"`
	OK          bool      `json:"ok"`
	Error       string    `json:"error,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// VerdictCache stores external link verdicts so repeated checks of the same
// URL across runs (and across builder instances) hit the cache.
type VerdictCache interface {
	Get(ctx context.Context, url string) (*Verdict, bool, error)
	Put(ctx context.Context, v *Verdict) error
}

// MemoryVerdicts is a process-local VerdictCache.
type MemoryVerdicts struct {
	mu sync.Mutex
	m  map[string]*Verdict
}

func NewMemoryVerdicts() *MemoryVerdicts {
	return &MemoryVerdicts{m: make(map[string]*Verdict)}
}

func (c *MemoryVerdicts) Get(_ context.Context, url string) (*Verdict, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[url]
	return v, ok, nil
}

func (c *MemoryVerdicts) Put(_ context.Context, v *Verdict) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[v.URL] = v
	return nil
}

// NATSVerdicts is a VerdictCache backed by a JetStream key-value bucket,
// shared by every checker pointed at the same NATS server.
type NATSVerdicts struct {
	conn *nats.Conn
	kv   jetstream.KeyValue
}

// NewNATSVerdicts connects to natsURL and opens (or creates) the bucket.
func NewNATSVerdicts(ctx context.Context, natsURL, bucket string) (*NATSVerdicts, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryCache, "failed to connect to NATS").
			Retryable().WithContext("url", natsURL).Build()
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryCache, "failed to create JetStream context").Build()
	}

	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      bucket,
			Description: "External link verdict cache",
			History:     1,
		})
		if err != nil {
			conn.Close()
			return nil, errors.WrapError(err, errors.CategoryCache, "failed to create KV bucket").
				WithContext("bucket", bucket).Build()
		}
	}

	slog.Info("Connected link verdict cache", slog.String("bucket", bucket))
	return &NATSVerdicts{conn: conn, kv: kv}, nil
}

func (c *NATSVerdicts) Get(ctx context.Context, url string) (*Verdict, bool, error) {
	entry, err := c.kv.Get(ctx, encodeKey(url))
	if err != nil {
		if err == jetstream.ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, errors.WrapError(err, errors.CategoryCache, "failed to read verdict").Build()
	}
	var v Verdict
	if err := json.Unmarshal(entry.Value(), &v); err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryCache, "malformed cached verdict").Build()
	}
	return &v, true, nil
}

func (c *NATSVerdicts) Put(ctx context.Context, v *Verdict) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.WrapError(err, errors.CategoryCache, "failed to marshal verdict").Build()
	}
	if _, err := c.kv.Put(ctx, encodeKey(v.URL), data); err != nil {
		return errors.WrapError(err, errors.CategoryCache, "failed to store verdict").Build()
	}
	return nil
}

// Close closes the NATS connection.
func (c *NATSVerdicts) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}

// encodeKey maps a URL onto the KV key alphabet (no slashes or spaces).
func encodeKey(url string) string {
	out := make([]byte, 0, len(url))
	for i := 0; i < len(url); i++ {
		c := url[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
