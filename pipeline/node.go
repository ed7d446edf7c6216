package pipeline

import (
	"context"

	"github.com/rushteam/mediarank/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindFilter Kind = "filter" // 过滤阶段：剔除已观看/不喜欢/已入库的候选
	KindRank   Kind = "rank"   // 排序阶段：混合打分并排序
	KindReRank Kind = "rerank" // 重排阶段：截断/阈值等结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 items -> 输出 items"的形态，方便过滤剔除、打分排序、截断重排。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RankContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
