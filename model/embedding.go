package model

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rushteam/mediarank/core"
)

// Encoder 是预训练文本嵌入模型的客户端接口，由调用方注入
// （本地推理服务、远端 API 等均可）。
type Encoder interface {
	// Encode 批量编码文本，返回与输入同序的向量。
	Encode(ctx context.Context, texts []string) ([][]float64, error)

	// Dimension 返回向量维度。
	Dimension() int
}

// EmbeddingModel 是稠密文本嵌入向量后端。
//
// 向量按条目 ID 缓存在 Store 中；每次构建只对缓存缺失的条目批量编码，
// 增量更新的成本与新增条目数成正比。
type EmbeddingModel struct {
	Encoder Encoder
	Cache   core.Store // id → 向量（JSON 编码）
	// BatchSize 是单次编码请求的条数上限，默认 32。
	BatchSize int
}

const vectorKeyPrefix = "vec:"

func NewEmbeddingModel(encoder Encoder, cache core.Store) *EmbeddingModel {
	return &EmbeddingModel{
		Encoder:   encoder,
		Cache:     cache,
		BatchSize: 32,
	}
}

func (m *EmbeddingModel) Name() string { return "embedding" }

func vectorKey(id int64) string {
	return vectorKeyPrefix + strconv.FormatInt(id, 10)
}

// Vectorize 为候选池生成向量矩阵：优先取缓存，缺失的批量编码并写回。
// force 为 true 时忽略缓存读取，全量重新编码（仍会写回）。
func (m *EmbeddingModel) Vectorize(ctx context.Context, candidates []*core.Candidate, force bool) ([][]float64, error) {
	matrix := make([][]float64, len(candidates))

	missing := make([]int, 0, len(candidates))
	if !force && m.Cache != nil {
		keys := make([]string, len(candidates))
		for i, c := range candidates {
			keys[i] = vectorKey(c.ID)
		}
		cached, err := m.Cache.BatchGet(ctx, keys)
		if err != nil {
			return nil, err
		}
		for i, c := range candidates {
			raw, ok := cached[vectorKey(c.ID)]
			if !ok {
				missing = append(missing, i)
				continue
			}
			var vec []float64
			if err := json.Unmarshal(raw, &vec); err != nil {
				missing = append(missing, i)
				continue
			}
			matrix[i] = vec
		}
	} else {
		for i := range candidates {
			missing = append(missing, i)
		}
	}

	if len(missing) == 0 {
		return matrix, nil
	}

	batchSize := m.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	writeback := make(map[string][]byte, len(missing))
	for start := 0; start < len(missing); start += batchSize {
		end := start + batchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[start:end]

		texts := make([]string, len(batch))
		for j, idx := range batch {
			texts[j] = EmbeddingText(candidates[idx])
		}
		vectors, err := m.Encoder.Encode(ctx, texts)
		if err != nil {
			return nil, err
		}
		for j, idx := range batch {
			matrix[idx] = vectors[j]
			raw, err := json.Marshal(vectors[j])
			if err != nil {
				return nil, err
			}
			writeback[vectorKey(candidates[idx].ID)] = raw
		}
	}

	if m.Cache != nil && len(writeback) > 0 {
		if err := m.Cache.BatchSet(ctx, writeback); err != nil {
			return nil, err
		}
	}
	return matrix, nil
}
