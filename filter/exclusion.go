package filter

import (
	"context"

	"github.com/rushteam/mediarank/core"
)

// WatchedFilter 过滤已观看内容：标准化标题命中观看集合即剔除。
type WatchedFilter struct{}

func (f *WatchedFilter) Name() string { return "filter.watched" }

func (f *WatchedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RankContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil {
		return false, nil
	}
	return rctx.IsWatched(item.Candidate.Title), nil
}

// DislikeFilter 过滤不喜欢内容：ID 或标准化标题命中仍在生效的记录即剔除。
// 过期记录不参与匹配（读取时过滤，存储不清理）。
type DislikeFilter struct{}

func (f *DislikeFilter) Name() string { return "filter.dislike" }

func (f *DislikeFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RankContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil || len(rctx.Dislikes) == 0 {
		return false, nil
	}
	title := item.Candidate.NormalizedTitle()
	for _, d := range rctx.Dislikes {
		if d.ID == item.ID() || core.NormalizeTitle(d.Title) == title {
			return true, nil
		}
	}
	return false, nil
}

// LibraryFilter 过滤媒体库/下载管理服务中已存在或已请求的内容。
type LibraryFilter struct{}

func (f *LibraryFilter) Name() string { return "filter.library" }

func (f *LibraryFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RankContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil {
		return false, nil
	}
	return rctx.InLibrary(item.ID()), nil
}
