package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rushteam/mediarank/core"
	"github.com/rushteam/mediarank/store"
)

// fakeClient 是可注入失败的状态查询客户端
type fakeClient struct {
	calls  int64
	status core.Status
	err    error
}

func (c *fakeClient) FetchStatus(context.Context, core.Kind, int64) (core.Status, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.err != nil {
		return core.Status{}, c.err
	}
	return c.status, nil
}

func TestStatusCacheReadThrough(t *testing.T) {
	client := &fakeClient{status: core.Status{InLibrary: true}}
	sc := &StatusCache{Store: store.NewMemoryStore(), Client: client}

	// 首次未命中，实时查询并回写
	res := sc.Get(context.Background(), core.KindMovie, 1)
	if res.Source != core.StatusFromLive {
		t.Fatalf("首次查询来源 = %v, want live", res.Source)
	}
	if !res.Status.InLibrary {
		t.Error("状态内容丢失")
	}

	// 二次命中缓存，不再实时查询
	res = sc.Get(context.Background(), core.KindMovie, 1)
	if res.Source != core.StatusFromCache {
		t.Fatalf("二次查询来源 = %v, want cache", res.Source)
	}
	if client.calls != 1 {
		t.Errorf("实时查询次数 = %d, want 1", client.calls)
	}
}

// kind 参与缓存键：同 id 不同 kind 互不命中
func TestStatusCacheKeyByKind(t *testing.T) {
	client := &fakeClient{}
	sc := &StatusCache{Store: store.NewMemoryStore(), Client: client}

	sc.Get(context.Background(), core.KindMovie, 1)
	sc.Get(context.Background(), core.KindSeries, 1)
	if client.calls != 2 {
		t.Errorf("不同 kind 应各查一次, 实际 %d", client.calls)
	}
}

// 实时查询失败时降级为默认状态并携带错误
func TestStatusCacheDegrade(t *testing.T) {
	client := &fakeClient{err: errors.New("service down")}
	sc := &StatusCache{Store: store.NewMemoryStore(), Client: client}

	res := sc.Get(context.Background(), core.KindMovie, 1)
	if res.Source != core.StatusFromDefault {
		t.Fatalf("失败时来源 = %v, want default", res.Source)
	}
	if !core.IsLookupFailed(res.Err) {
		t.Errorf("应携带 LOOKUP_FAILED 错误, 实际 %v", res.Err)
	}
	if res.Status.InLibrary {
		t.Error("降级状态应为零值")
	}
}

func TestStatusCacheBatchGet(t *testing.T) {
	client := &fakeClient{status: core.Status{IsRequested: true}}
	sc := &StatusCache{Store: store.NewMemoryStore(), Client: client}

	// 先缓存一条
	sc.Get(context.Background(), core.KindMovie, 1)

	ids := []int64{1, 2, 3, 4, 5}
	results := sc.BatchGet(context.Background(), core.KindMovie, ids)
	if len(results) != 5 {
		t.Fatalf("结果条数 = %d, want 5", len(results))
	}
	if results[1].Source != core.StatusFromCache {
		t.Errorf("已缓存条目来源 = %v, want cache", results[1].Source)
	}
	for _, id := range ids[1:] {
		if results[id].Source != core.StatusFromLive {
			t.Errorf("条目 %d 来源 = %v, want live", id, results[id].Source)
		}
	}
	// 1 条命中缓存，4 条实时
	if client.calls != 5 {
		t.Errorf("实时查询次数 = %d, want 5", client.calls)
	}
}

// 单条失败不影响其余条目
func TestStatusCacheBatchPartialFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("down")}
	sc := &StatusCache{Store: store.NewMemoryStore(), Client: client}

	results := sc.BatchGet(context.Background(), core.KindMovie, []int64{1, 2})
	if len(results) != 2 {
		t.Fatalf("结果条数 = %d, want 2", len(results))
	}
	for id, res := range results {
		if res.Source != core.StatusFromDefault {
			t.Errorf("条目 %d 来源 = %v, want default", id, res.Source)
		}
	}
}
