// Package model 提供排序所需的纯打分模型：贝叶斯质量分、对数置信分，
// 以及语义向量化的两种后端（稀疏 TF-IDF / 稠密文本嵌入）。
package model

import "math"

// 质量/置信模型常量。
const (
	// GlobalMeanFallback 是候选池中无任何有效投票时使用的全局均值。
	GlobalMeanFallback = 6.818

	// QualityPriorVotes 是贝叶斯平滑的先验票数 m：
	// 票数达到 m 时，条目自身评分与全局均值权重相等。
	QualityPriorVotes = 500

	// confidenceBase 是置信曲线的基准票数：该票数附近曲线进入缓升段。
	confidenceBase = 100
	// confidenceSpan 决定曲线的饱和速度（分母 log(1+span/base)）。
	confidenceSpan = 20000
)

// GlobalMean 计算候选池的全局均值评分：取所有至少有一票的条目的平均分，
// 无一符合时回退为 GlobalMeanFallback。
func GlobalMean(ratings []float64) float64 {
	var sum float64
	var n int
	for _, r := range ratings {
		if r > 0 {
			sum += r
			n++
		}
	}
	if n == 0 {
		return GlobalMeanFallback
	}
	return sum / float64(n)
}

// BayesianQuality 计算贝叶斯平滑质量分，归一化到 [0,1]。
//
// 将极端评分拉向全局均值，直到足够的票数确认评分可信：
// 票数越多，条目自身评分占比越大；票数越少，全局均值占比越大。
// 避免 2 票 10.0 分的条目排在几千票的经典之上。
//
// 零票或零评分时直接返回 globalMean/10。
func BayesianQuality(rating float64, voteCount int, globalMean float64, priorVotes int) float64 {
	if voteCount == 0 || rating == 0 {
		return globalMean / 10.0
	}
	v := float64(voteCount)
	m := float64(priorVotes)
	bayesian := (rating*v + globalMean*m) / (v + m)
	return bayesian / 10.0
}

// Confidence 计算对数置信分。
//
// 基准曲线：log(1 + votes/100) / log(1 + 200)，上限 0.95，饱和但永不到 1。
// 极端评分惩罚：评分 > 9.0 或 < 4.0 时乘以 min(votes/2000, 1)×0.3 + 0.7，
// 票数越少惩罚越重，抑制少量粉丝/黑子刷出的极端分。
// 冷门佳片加成：评分在 [8.5, 9.0] 且票数在 [500, 3000] 时 ×1.05。
// 最终结果上限 0.98；零票返回 0。
func Confidence(rating float64, voteCount int) float64 {
	if voteCount == 0 {
		return 0.0
	}

	v := float64(voteCount)
	base := math.Log(1+v/confidenceBase) / math.Log(1+confidenceSpan/confidenceBase)
	base = math.Min(base, 0.95)

	penalty := 1.0
	if rating > 9.0 || rating < 4.0 {
		penalty = math.Min(v/2000, 1.0)*0.3 + 0.7
	}

	bonus := 1.0
	if rating >= 8.5 && rating <= 9.0 && voteCount >= 500 && voteCount <= 3000 {
		bonus = 1.05
	}

	return math.Min(base*penalty*bonus, 0.98)
}

// WeightedRating 是榜单用的 IMDB 风格加权评分：
// WR = v/(v+m)×R + m/(v+m)×C。票数不足 minVotes 的条目不参与榜单。
func WeightedRating(rating float64, voteCount, minVotes int, mean float64) (float64, bool) {
	if voteCount < minVotes {
		return 0, false
	}
	v := float64(voteCount)
	m := float64(minVotes)
	return v/(v+m)*rating + m/(v+m)*mean, true
}
