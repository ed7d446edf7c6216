package core

import "context"

// SimilarItem 是 item-vs-all 相似度查询的单条结果，只含 ID 与相似度，
// 元数据由调用方通过候选池回填。
type SimilarItem struct {
	ID         int64   `json:"id"`
	Similarity float64 `json:"similarity"`
}

// VectorIndex 是语义向量索引的领域接口。
//
// 两种后端（稀疏加权词项向量 / 稠密文本嵌入向量）共用此契约：
// 每个候选产出定长向量，支持余弦相似度。
//
// 不变式：向量矩阵的行序必须与构建时的候选顺序一致；
// 与词法索引的重建必须同步进行。
type VectorIndex interface {
	// Build 基于候选池构建（或增量补齐）向量矩阵。
	// force 为 true 时忽略缓存全量重建。
	Build(ctx context.Context, candidates []*Candidate, force bool) error

	// BuildProfile 由已观看条目构建观影者画像向量（质心）。
	// 无一命中时回退为池中前 10 个条目的质心。
	BuildProfile(ctx context.Context, watched []WatchedEntry) error

	// ProfileSimilarities 返回画像向量与每个候选的余弦相似度，按候选 ID 索引。
	ProfileSimilarities(ctx context.Context) (map[int64]float64, error)

	// SimilarTo 返回与指定候选最相似的 2×limit 个 (id, similarity) 对。
	// id 不在索引中时返回空结果。
	SimilarTo(ctx context.Context, id int64, limit int) ([]SimilarItem, error)

	// Similarity 返回两个已索引候选之间的余弦相似度。
	Similarity(aID, bID int64) (float64, bool)
}

// ErrIndexNotBuilt 表示在构建之前调用了搜索/相似度。
var ErrIndexNotBuilt = NewDomainError(ModuleSemantic, ErrorCodeNotBuilt, "semantic: index not built")
