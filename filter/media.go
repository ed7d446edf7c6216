package filter

import (
	"context"
	"strings"

	"github.com/rushteam/mediarank/core"
	"github.com/rushteam/mediarank/pkg/conv"
)

// KindFilter 按内容类型过滤：只保留指定 Kind 的候选。
// Kind 为空时回退读取请求参数 "kind"，仍为空则不过滤。
type KindFilter struct {
	Kind core.Kind
}

func (f *KindFilter) Name() string { return "filter.kind" }

func (f *KindFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RankContext,
	item *core.Item,
) (bool, error) {
	kind := f.Kind
	if kind == "" && rctx != nil {
		kind = core.Kind(conv.ParamGet(rctx.Params, "kind", ""))
	}
	if kind == "" {
		return false, nil
	}
	return item.Candidate.Kind != kind, nil
}

// GenreFilter 按类型标签过滤：候选的任一 genre 与指定值大小写不敏感
// 相等即保留。Genre 为空时回退读取请求参数 "genre"，仍为空则不过滤。
type GenreFilter struct {
	Genre string
}

func (f *GenreFilter) Name() string { return "filter.genre" }

func (f *GenreFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RankContext,
	item *core.Item,
) (bool, error) {
	genre := f.Genre
	if genre == "" && rctx != nil {
		genre = conv.ParamGet(rctx.Params, "genre", "")
	}
	if genre == "" {
		return false, nil
	}
	want := strings.ToLower(genre)
	for _, g := range item.Candidate.Genres {
		if strings.ToLower(g) == want {
			return false, nil
		}
	}
	return true, nil
}
