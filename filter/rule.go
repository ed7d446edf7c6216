package filter

import (
	"context"

	"github.com/rushteam/mediarank/core"
	"github.com/rushteam/mediarank/pkg/dsl"
)

// RuleFilter 基于 CEL 表达式的规则过滤器：表达式求值为 true 的候选被保留。
// 表达式为空时不过滤，求值失败时保留候选并返回错误（由 FilterNode 容错）。
//
// 示例：
//
//	&RuleFilter{Expr: `item.rating >= 7.0 && item.vote_count > 500`}
//	&RuleFilter{Expr: `"Sci-Fi" in item.genres`}
type RuleFilter struct {
	Expr string
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RankContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" {
		return false, nil
	}
	keep, err := dsl.NewEval(item, rctx).Evaluate(f.Expr)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
