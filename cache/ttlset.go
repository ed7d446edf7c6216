// Package cache 提供两级缓存：进程内的时效集合（排除用）
// 与持久化的状态查询缓存（读穿透 + 回写）。
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/mediarank/core"
)

// SetTTL 是时效集合的默认有效期。
const SetTTL = 300 * time.Second

// SetLoader 提供时效集合的数据来源：媒体库 ID 集合与已观看标题集合。
type SetLoader interface {
	// LoadLibraryIDs 返回媒体库/请求服务中已存在或已请求的内容 ID。
	LoadLibraryIDs(ctx context.Context) (map[int64]struct{}, error)

	// LoadWatchedTitles 返回标准化后的已观看标题集合。
	LoadWatchedTitles(ctx context.Context) (map[string]struct{}, error)
}

// StatusSets 维护排除用的两个进程内集合，过期后在下一次读取时惰性重建。
//
// 设计原则：
//   - 读取路径不做后台刷新，过期即同步重建（排除集合很小，重建开销低）
//   - 重建失败时沿用旧集合，宁可多排除也不放行已看过的内容
//   - 互斥锁保护，重建期间并发读阻塞等待
type StatusSets struct {
	Loader SetLoader
	TTL    time.Duration // 零值时取 SetTTL

	mu         sync.Mutex
	libraryIDs map[int64]struct{}
	watched    map[string]struct{}
	builtAt    time.Time
}

// LibraryIDs 返回媒体库 ID 集合，必要时先重建。
func (s *StatusSets) LibraryIDs(ctx context.Context) (map[int64]struct{}, error) {
	if err := s.refresh(ctx); err != nil && s.libraryIDs == nil {
		return nil, err
	}
	return s.libraryIDs, nil
}

// WatchedTitles 返回已观看标题集合，必要时先重建。
func (s *StatusSets) WatchedTitles(ctx context.Context) (map[string]struct{}, error) {
	if err := s.refresh(ctx); err != nil && s.watched == nil {
		return nil, err
	}
	return s.watched, nil
}

// Invalidate 立即作废集合，下一次读取触发重建。
// 新增观看/不喜欢记录后调用，保证排除立刻生效。
func (s *StatusSets) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builtAt = time.Time{}
}

func (s *StatusSets) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return SetTTL
}

func (s *StatusSets) refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.builtAt.IsZero() && time.Since(s.builtAt) < s.ttl() {
		return nil
	}
	if s.Loader == nil {
		return core.NewDomainError(core.ModuleCache, core.ErrorCodeMissingData, "cache: set loader not configured")
	}

	ids, err := s.Loader.LoadLibraryIDs(ctx)
	if err != nil {
		return err
	}
	watched, err := s.Loader.LoadWatchedTitles(ctx)
	if err != nil {
		return err
	}

	s.libraryIDs = ids
	s.watched = watched
	s.builtAt = time.Now()
	return nil
}
