// Package mediarank 是一个影视内容混合推荐引擎（Media Ranking Kit）。
//
// 设计要点：
// - Pipeline-first: 排序逻辑通过 Node 串联（Filter → Rank → ReRank）
// - 双路检索: BM25 词法检索 + 语义向量相似（稀疏 TF-IDF / 稠密嵌入两种后端）
// - 可解释打分: 内容/协同/质量/置信四路子分数全程保留，附推荐理由
// - 反馈闭环: 观看历史与时效性"不喜欢"记录驱动排除与惩罚
package mediarank

import "github.com/rushteam/mediarank/pipeline"

// 轻量 facade：便于用户直接 import "mediarank" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)
