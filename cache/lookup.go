package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/mediarank/core"
)

// 状态查询缓存参数。
const (
	// LookupTTL 是持久化状态缓存的有效期（7 天）。
	LookupTTL = 7 * 24 * time.Hour

	// lookupConcurrency 是批量查询的并发上限。
	lookupConcurrency = 10
)

// StatusClient 是外部库/请求服务的实时状态查询接口。
type StatusClient interface {
	// FetchStatus 实时查询一条内容的状态。
	FetchStatus(ctx context.Context, kind core.Kind, id int64) (core.Status, error)
}

// StatusCache 是读穿透的持久化状态缓存。
//
// 查询顺序：缓存命中直接返回；未命中则实时查询并回写缓存；
// 实时查询失败时降级为默认状态并携带原始错误，调用方据 Source
// 区分"没有数据"与"查询失败"。
type StatusCache struct {
	Store  core.Store
	Client StatusClient
	TTL    time.Duration // 零值时取 LookupTTL
	Logger zerolog.Logger
}

// lookupKey 是缓存键：kind:id。
func lookupKey(kind core.Kind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// Get 查询单条状态。
func (c *StatusCache) Get(ctx context.Context, kind core.Kind, id int64) core.StatusResult {
	key := lookupKey(kind, id)

	if c.Store != nil {
		if raw, err := c.Store.Get(ctx, key); err == nil {
			var st core.Status
			if err := json.Unmarshal(raw, &st); err == nil {
				return core.StatusResult{Status: st, Source: core.StatusFromCache}
			}
			// 损坏的缓存条目按未命中处理
			c.Logger.Warn().Str("key", key).Msg("discarding corrupt status cache entry")
		}
	}

	return c.fetchAndStore(ctx, kind, id, key)
}

// BatchGet 并发查询一批状态，结果按候选 ID 索引。
// 并发度受限，单条失败不影响其余条目。
func (c *StatusCache) BatchGet(ctx context.Context, kind core.Kind, ids []int64) map[int64]core.StatusResult {
	results := make(map[int64]core.StatusResult, len(ids))
	if len(ids) == 0 {
		return results
	}

	// 先批量读缓存，剩余的并发实时查询
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = lookupKey(kind, id)
	}
	cached := map[string][]byte{}
	if c.Store != nil {
		if got, err := c.Store.BatchGet(ctx, keys); err == nil {
			cached = got
		}
	}

	// 命中缓存的先落结果，剩余的再并发实时查询，避免与 worker 并发写 map
	type missing struct {
		id  int64
		key string
	}
	var pending []missing
	for i, id := range ids {
		if raw, ok := cached[keys[i]]; ok {
			var st core.Status
			if err := json.Unmarshal(raw, &st); err == nil {
				results[id] = core.StatusResult{Status: st, Source: core.StatusFromCache}
				continue
			}
		}
		pending = append(pending, missing{id: id, key: keys[i]})
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for _, m := range pending {
		m := m
		g.Go(func() error {
			res := c.fetchAndStore(gctx, kind, m.id, m.key)
			mu.Lock()
			results[m.id] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// fetchAndStore 实时查询并回写缓存，失败时降级为默认状态。
func (c *StatusCache) fetchAndStore(ctx context.Context, kind core.Kind, id int64, key string) core.StatusResult {
	if c.Client == nil {
		return core.StatusResult{
			Source: core.StatusFromDefault,
			Err:    core.NewDomainError(core.ModuleCache, core.ErrorCodeLookupFailed, "cache: status client not configured"),
		}
	}

	st, err := c.Client.FetchStatus(ctx, kind, id)
	if err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("status lookup failed, using default")
		return core.StatusResult{
			Source: core.StatusFromDefault,
			Err:    core.NewDomainError(core.ModuleCache, core.ErrorCodeLookupFailed, "cache: status lookup failed: "+err.Error()),
		}
	}

	if c.Store != nil {
		if raw, err := json.Marshal(st); err == nil {
			ttl := c.TTL
			if ttl <= 0 {
				ttl = LookupTTL
			}
			if err := c.Store.Set(ctx, key, raw, int(ttl/time.Second)); err != nil {
				c.Logger.Warn().Err(err).Str("key", key).Msg("status cache writeback failed")
			}
		}
	}
	return core.StatusResult{Status: st, Source: core.StatusFromLive}
}
