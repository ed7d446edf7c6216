// Package search 提供候选池上的词法检索：BM25 倒排评分 + 标题子串回退。
package search

import "math"

// BM25 参数（Okapi 变体的常用默认值）。
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// bm25 是 Okapi BM25 评分器，基于已分词的语料构建。
// 负 IDF（出现在超过半数文档中的词）按 epsilon × 平均 IDF 下限处理。
type bm25 struct {
	docFreqs []map[string]int // 每个文档的词频
	docLens  []float64
	avgLen   float64
	idf      map[string]float64
}

func newBM25(corpus [][]string) *bm25 {
	b := &bm25{
		docFreqs: make([]map[string]int, len(corpus)),
		docLens:  make([]float64, len(corpus)),
		idf:      make(map[string]float64),
	}

	df := make(map[string]int)
	var totalLen float64
	for i, doc := range corpus {
		freqs := make(map[string]int, len(doc))
		for _, t := range doc {
			freqs[t]++
		}
		b.docFreqs[i] = freqs
		b.docLens[i] = float64(len(doc))
		totalLen += b.docLens[i]
		for t := range freqs {
			df[t]++
		}
	}
	if len(corpus) > 0 {
		b.avgLen = totalLen / float64(len(corpus))
	}

	n := float64(len(corpus))
	var idfSum float64
	var negative []string
	for t, f := range df {
		idf := math.Log((n - float64(f) + 0.5) / (float64(f) + 0.5))
		b.idf[t] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, t)
		}
	}
	if len(df) > 0 {
		floor := bm25Epsilon * idfSum / float64(len(df))
		for _, t := range negative {
			b.idf[t] = floor
		}
	}
	return b
}

// scores 返回查询词对每个文档的 BM25 相关度。
func (b *bm25) scores(query []string) []float64 {
	out := make([]float64, len(b.docFreqs))
	if b.avgLen == 0 {
		return out
	}
	for _, t := range query {
		idf, ok := b.idf[t]
		if !ok {
			continue
		}
		for i, freqs := range b.docFreqs {
			tf := float64(freqs[t])
			if tf == 0 {
				continue
			}
			norm := bm25K1 * (1 - bm25B + bm25B*b.docLens[i]/b.avgLen)
			out[i] += idf * tf * (bm25K1 + 1) / (tf + norm)
		}
	}
	return out
}
