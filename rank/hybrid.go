// Package rank 提供混合打分 Node：内容相似、协同信号、贝叶斯质量、
// 对数置信四路加权，外加时效性的不喜欢惩罚。
package rank

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/mediarank/core"
	"github.com/rushteam/mediarank/model"
	"github.com/rushteam/mediarank/pipeline"
	"github.com/rushteam/mediarank/pkg/utils"
)

// 推荐理由阈值：按优先级取第一个命中的理由。
const (
	reasonContentThreshold = 0.7
	reasonCollabThreshold  = 0.6
	reasonQualityThreshold = 0.8
)

// 不喜欢惩罚参数：相似度超过阈值才触发，惩罚项线性放大后按权重扣减。
const (
	penaltySimThreshold = 0.6
	penaltySimFloor     = 0.5
	penaltyWeight       = 0.3
)

// HybridNode 是混合排序 Node。
//
// 设计原则：
//   - 四路子分数各自归一到 [0,1]，权重归一化后加权求和
//   - 内容分来自语义索引的画像相似度，协同分来自推荐强度
//   - 质量分和置信分由候选池内的评分统计现场计算
//   - 与生效中不喜欢记录高度相似的候选被扣分，扣分后不做下限截断
//   - 排序使用稳定排序，同分保持入池顺序
type HybridNode struct {
	// Index 提供画像相似度与候选间相似度；为 nil 时内容分与惩罚均为 0。
	Index core.VectorIndex

	// Precomputed 是离线算好的分数拆解（按候选 ID 索引）。
	// 命中时内容/协同分直接采用，质量/置信仍然现场重算。
	Precomputed map[int64]core.ScoreBreakdown

	// Now 用于不喜欢记录的时效判定，零值时取 time.Now。
	Now time.Time
}

func (n *HybridNode) Name() string { return "rank.hybrid" }

func (n *HybridNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *HybridNode) Process(
	ctx context.Context,
	rctx *core.RankContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	weights := core.DefaultWeights()
	if rctx != nil {
		weights = rctx.Weights
	}
	weights = weights.Normalize()

	profileSims := n.profileSimilarities(ctx)
	globalMean := poolGlobalMean(items)
	maxStrength := poolMaxStrength(items)

	now := n.Now
	if now.IsZero() {
		now = time.Now()
	}
	var dislikes []core.DislikeRecord
	if rctx != nil {
		for _, d := range rctx.Dislikes {
			if d.Active(now) {
				dislikes = append(dislikes, d)
			}
		}
	}

	for _, item := range items {
		if item == nil || item.Candidate == nil {
			continue
		}
		c := item.Candidate

		content, collab, havePre := n.precomputed(c.ID)
		if !havePre {
			if sim, ok := profileSims[c.ID]; ok && sim > 0 {
				content = sim
			}
			if maxStrength > 0 {
				collab = float64(c.RecStrength) / float64(maxStrength)
				if collab > 1 {
					collab = 1
				}
			}
		}

		quality := model.BayesianQuality(c.Rating, c.VoteCount, globalMean, model.QualityPriorVotes)
		confidence := model.Confidence(c.Rating, c.VoteCount)

		hybrid := weights.Content*content +
			weights.Collaborative*collab +
			weights.Quality*quality +
			weights.Confidence*confidence

		penalty := n.dislikePenalty(c.ID, dislikes)
		hybrid -= penaltyWeight * penalty

		item.Scores = core.ScoreBreakdown{
			Hybrid:        hybrid,
			Content:       content,
			Collaborative: collab,
			Quality:       quality,
			Confidence:    confidence,
			Penalty:       penalty,
		}
		item.PutLabel("reason", utils.Label{
			Value:  Reason(item.Scores),
			Source: n.Name(),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Scores.Hybrid > items[j].Scores.Hybrid
	})
	return items, nil
}

// precomputed 查离线分数，命中时返回其中的内容/协同分。
// 离线文档存在但缺少该候选时，两路子分数取中性值 0.5。
func (n *HybridNode) precomputed(id int64) (content, collab float64, ok bool) {
	if n.Precomputed == nil {
		return 0, 0, false
	}
	sb, hit := n.Precomputed[id]
	if !hit {
		return 0.5, 0.5, true
	}
	return sb.Content, sb.Collaborative, true
}

// profileSimilarities 拉取画像相似度，索引未构建时降级为空。
func (n *HybridNode) profileSimilarities(ctx context.Context) map[int64]float64 {
	if n.Index == nil {
		return nil
	}
	sims, err := n.Index.ProfileSimilarities(ctx)
	if err != nil {
		return nil
	}
	return sims
}

// dislikePenalty 计算候选与生效中不喜欢记录的最大相似度惩罚。
// 最大相似度不超过阈值时为 0；超过后线性放大到 (0.2, 1.0]。
func (n *HybridNode) dislikePenalty(id int64, dislikes []core.DislikeRecord) float64 {
	if n.Index == nil || len(dislikes) == 0 {
		return 0
	}
	maxSim := 0.0
	for _, d := range dislikes {
		if d.ID == id {
			continue
		}
		if sim, ok := n.Index.Similarity(id, d.ID); ok && sim > maxSim {
			maxSim = sim
		}
	}
	if maxSim <= penaltySimThreshold {
		return 0
	}
	return (maxSim - penaltySimFloor) * 2
}

// Reason 根据分数拆解生成推荐理由，按固定优先级取第一个命中项。
func Reason(sb core.ScoreBreakdown) string {
	switch {
	case sb.Content > reasonContentThreshold:
		return "Based on your viewing history"
	case sb.Collaborative > reasonCollabThreshold:
		return "Popular among similar viewers"
	case sb.Quality > reasonQualityThreshold:
		return "Highly rated by critics"
	default:
		return "Highly rated recommendation"
	}
}

// poolGlobalMean 计算当前候选池的全局均值评分。
func poolGlobalMean(items []*core.Item) float64 {
	ratings := make([]float64, 0, len(items))
	for _, item := range items {
		if item != nil && item.Candidate != nil {
			ratings = append(ratings, item.Candidate.Rating)
		}
	}
	return model.GlobalMean(ratings)
}

// poolMaxStrength 取候选池内的最大推荐强度，用于协同分归一。
func poolMaxStrength(items []*core.Item) int {
	max := 0
	for _, item := range items {
		if item != nil && item.Candidate != nil && item.Candidate.RecStrength > max {
			max = item.Candidate.RecStrength
		}
	}
	if max == 0 {
		max = 1
	}
	return max
}
