// Package semantic 提供语义向量索引：候选池的向量矩阵、观影者画像质心、
// 以及 profile-vs-all / item-vs-all 两类余弦相似度查询。
package semantic

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/rushteam/mediarank/core"
)

// Index 实现 core.VectorIndex。
//
// 不变式：matrix 的行序与构建时传入的候选顺序一致，rows 记录 id → 行号；
// 与词法索引共用同一份候选顺序时必须同步重建。
type Index struct {
	Vectorizer interface {
		Name() string
		Vectorize(ctx context.Context, candidates []*core.Candidate, force bool) ([][]float64, error)
	}

	// ProfileFallback 是观看历史无一命中时用作画像的池头条目数，默认 10。
	ProfileFallback int

	mu         sync.RWMutex
	candidates []*core.Candidate
	matrix     [][]float64
	rows       map[int64]int
	profile    []float64
}

var _ core.VectorIndex = (*Index)(nil)

// Build 构建（或增量补齐）向量矩阵，并记录 id → 行号映射。
func (idx *Index) Build(ctx context.Context, candidates []*core.Candidate, force bool) error {
	matrix, err := idx.Vectorizer.Vectorize(ctx, candidates, force)
	if err != nil {
		return err
	}

	rows := make(map[int64]int, len(candidates))
	for i, c := range candidates {
		rows[c.ID] = i
	}

	idx.mu.Lock()
	idx.candidates = candidates
	idx.matrix = matrix
	idx.rows = rows
	idx.profile = nil // 候选池变化后画像必须重建
	idx.mu.Unlock()
	return nil
}

// BuildProfile 由已观看条目构建画像质心。
//
// 匹配规则：观看标题对候选标题做大小写不敏感的子串匹配，每个观看标题
// 取首个命中。无一命中时回退为池中前 ProfileFallback 个条目的质心。
func (idx *Index) BuildProfile(_ context.Context, watched []core.WatchedEntry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.matrix == nil {
		return core.ErrIndexNotBuilt
	}

	var rows []int
	for _, w := range watched {
		title := w.SeriesName
		if title == "" {
			title = w.Title
		}
		if title == "" {
			continue
		}
		needle := strings.ToLower(title)
		for i, c := range idx.candidates {
			if strings.Contains(strings.ToLower(c.Title), needle) {
				rows = append(rows, i)
				break
			}
		}
	}

	if len(rows) == 0 {
		fallback := idx.ProfileFallback
		if fallback <= 0 {
			fallback = 10
		}
		if fallback > len(idx.matrix) {
			fallback = len(idx.matrix)
		}
		for i := 0; i < fallback; i++ {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return core.NewDomainError(core.ModuleSemantic, core.ErrorCodeMissingData, "semantic: empty candidate pool")
	}

	dim := len(idx.matrix[rows[0]])
	profile := make([]float64, dim)
	for _, r := range rows {
		for j, x := range idx.matrix[r] {
			profile[j] += x
		}
	}
	for j := range profile {
		profile[j] /= float64(len(rows))
	}
	idx.profile = profile
	return nil
}

// ProfileSimilarities 计算画像与每个候选的余弦相似度，按 ID 索引。
func (idx *Index) ProfileSimilarities(_ context.Context) (map[int64]float64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.matrix == nil || idx.profile == nil {
		return nil, core.ErrIndexNotBuilt
	}

	sims := make(map[int64]float64, len(idx.candidates))
	for i, c := range idx.candidates {
		sims[c.ID] = cosine(idx.profile, idx.matrix[i])
	}
	return sims, nil
}

// SimilarTo 返回与指定候选最相似的 2×limit 个 (id, similarity) 对。
// id 不在索引中时返回空结果而非错误。
func (idx *Index) SimilarTo(_ context.Context, id int64, limit int) ([]core.SimilarItem, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.matrix == nil {
		return nil, core.ErrIndexNotBuilt
	}
	row, ok := idx.rows[id]
	if !ok {
		return nil, nil
	}

	target := idx.matrix[row]
	out := make([]core.SimilarItem, 0, len(idx.candidates)-1)
	for i, c := range idx.candidates {
		if c.ID == id {
			continue
		}
		out = append(out, core.SimilarItem{
			ID:         c.ID,
			Similarity: cosine(target, idx.matrix[i]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})

	if limit > 0 && len(out) > 2*limit {
		out = out[:2*limit]
	}
	return out, nil
}

// Similarity 返回两个已索引候选之间的余弦相似度。
func (idx *Index) Similarity(aID, bID int64) (float64, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ra, ok := idx.rows[aID]
	if !ok {
		return 0, false
	}
	rb, ok := idx.rows[bID]
	if !ok {
		return 0, false
	}
	return cosine(idx.matrix[ra], idx.matrix[rb]), true
}

// Size 返回已索引的候选数。
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.matrix)
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
