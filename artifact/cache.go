package artifact

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// CachedStore keeps loaded pairs in memory while a watcher on the artifact
// directory is running. Any change to either file purges the cache, so a
// retrain in another process is picked up on the next Load.
type CachedStore struct {
	store    *Store
	cache    *lru.Cache[string, *Pair]
	watching atomic.Bool
	// generation is bumped on every purge so a Load racing a purge does
	// not cache what it read before the change.
	generation atomic.Uint64
	logger     *zap.Logger
}

func NewCachedStore(store *Store, size int, logger *zap.Logger) (*CachedStore, error) {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[string, *Pair](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{store: store, cache: cache, logger: logger}, nil
}

func (c *CachedStore) Load() (*Pair, error) {
	key := c.store.config.Dir
	if c.watching.Load() {
		if pair, ok := c.cache.Get(key); ok {
			return pair, nil
		}
	}
	generation := c.generation.Load()
	pair, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if c.watching.Load() && c.generation.Load() == generation {
		c.cache.Add(key, pair)
	}
	return pair, nil
}

// Watch starts the directory watcher. It returns once the watcher is
// registered; the watch ends when ctx is cancelled.
func (c *CachedStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(c.store.config.Dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", c.store.config.Dir, err)
	}
	c.watching.Store(true)

	go func() {
		defer func() {
			c.watching.Store(false)
			c.purge()
			watcher.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if c.tracks(event.Name) {
					c.logger.Debug("artifact changed, purging cache", zap.String("file", event.Name), zap.String("op", event.Op.String()))
					c.purge()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("artifact watcher error", zap.Error(err))
				c.purge()
			}
		}
	}()
	return nil
}

func (c *CachedStore) tracks(name string) bool {
	base := filepath.Base(name)
	return base == c.store.config.ModelFile || base == c.store.config.EncoderFile
}

func (c *CachedStore) purge() {
	c.generation.Add(1)
	c.cache.Purge()
}
