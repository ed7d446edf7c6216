// Package rerank 提供排序后的截断与兜底 Node。
package rerank

import (
	"context"

	"github.com/rushteam/mediarank/core"
	"github.com/rushteam/mediarank/pipeline"
)

// TopNNode 截断结果到前 N 条。N <= 0 时不截断。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string { return "rerank.topn" }

func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RankContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}

// MinScoreNode 过滤混合分低于下限的候选。惩罚可以把分数打成负值，
// 下限设为 0 即可把被重罚的候选挡在结果之外。
type MinScoreNode struct {
	Min     float64
	Enabled bool
}

func (n *MinScoreNode) Name() string { return "rerank.min_score" }

func (n *MinScoreNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *MinScoreNode) Process(
	_ context.Context,
	_ *core.RankContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if !n.Enabled {
		return items, nil
	}
	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item.Scores.Hybrid >= n.Min {
			out = append(out, item)
		}
	}
	return out, nil
}
