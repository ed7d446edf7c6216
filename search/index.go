package search

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rushteam/mediarank/core"
)

// 加权分词的字段上限。
const (
	maxCastTokens    = 15
	maxStudioTokens  = 10
	maxKeywordTokens = 20
	maxOverviewChars = 300
)

// ErrNotBuilt 表示在构建之前调用了搜索。
var ErrNotBuilt = core.NewDomainError(core.ModuleSearch, core.ErrorCodeNotBuilt, "search: index not built")

// Result 是单条检索结果：候选 + BM25 相关度（子串回退时为 0）。
type Result struct {
	Candidate *core.Candidate `json:"candidate"`
	Score     float64         `json:"score"`
}

// Index 是候选池上的 BM25 倒排索引。
//
// 持久化：分词语料与源候选作为一个整体缓存；仅在显式 force 或缓存缺失时
// 重建——索引不会自动感知候选池变化（已知的过期风险，按原始语义保留）。
type Index struct {
	// Cache 为空时不做持久化。
	Cache    core.Store
	CacheKey string // 默认 "bm25_index"

	candidates []*core.Candidate
	corpus     [][]string
	bm25       *bm25
}

// indexSnapshot 是持久化的缓存单元：索引、词料、源候选一体存取。
type indexSnapshot struct {
	Candidates []*core.Candidate `json:"candidates"`
	Corpus     [][]string        `json:"corpus"`
}

func (idx *Index) cacheKey() string {
	if idx.CacheKey != "" {
		return idx.CacheKey
	}
	return "bm25_index"
}

// Built 返回索引是否可用。
func (idx *Index) Built() bool { return idx.bm25 != nil }

// Size 返回已索引的候选数。
func (idx *Index) Size() int { return len(idx.candidates) }

// Build 构建 BM25 索引。force 为 false 且缓存存在时直接加载缓存，
// 返回索引的候选数。
func (idx *Index) Build(ctx context.Context, candidates []*core.Candidate, force bool) (int, error) {
	if !force && idx.Cache != nil {
		if raw, err := idx.Cache.Get(ctx, idx.cacheKey()); err == nil {
			var snap indexSnapshot
			if err := json.Unmarshal(raw, &snap); err == nil && len(snap.Candidates) == len(snap.Corpus) {
				idx.candidates = snap.Candidates
				idx.corpus = snap.Corpus
				idx.bm25 = newBM25(snap.Corpus)
				return len(idx.candidates), nil
			}
		}
	}

	idx.candidates = candidates
	idx.corpus = make([][]string, len(candidates))
	for i, c := range candidates {
		idx.corpus[i] = tokenizeCandidate(c)
	}
	idx.bm25 = newBM25(idx.corpus)

	if idx.Cache != nil {
		raw, err := json.Marshal(indexSnapshot{Candidates: idx.candidates, Corpus: idx.corpus})
		if err == nil {
			// 缓存写入失败不阻塞构建
			_ = idx.Cache.Set(ctx, idx.cacheKey(), raw)
		}
	}
	return len(idx.candidates), nil
}

// Search 返回 BM25 相关度最高的 k 个候选（仅保留正分），按分数降序。
// 空查询（或全部被分词规则丢弃）返回空结果。
func (idx *Index) Search(_ context.Context, query string, k int) ([]Result, error) {
	if idx.bm25 == nil {
		return nil, ErrNotBuilt
	}

	tokens := tokenizeQuery(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	scores := idx.bm25.scores(tokens)
	results := make([]Result, 0, len(scores))
	for i, s := range scores {
		if s > 0 {
			results = append(results, Result{Candidate: idx.candidates[i], Score: s})
		}
	}
	// 降序稳定排序，同分保持池序
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// SearchWithFallback 在 BM25 零命中时回退为标题子串匹配：
// 大小写不敏感，分数 0.0，按池序返回前 k 个。
// 空查询不进入回退——否则空串会子串匹配到所有标题。
func (idx *Index) SearchWithFallback(ctx context.Context, query string, k int) ([]Result, error) {
	results, err := idx.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		return results, nil
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}
	for _, c := range idx.candidates {
		if strings.Contains(strings.ToLower(c.Title), needle) {
			results = append(results, Result{Candidate: c, Score: 0.0})
			if k > 0 && len(results) >= k {
				break
			}
		}
	}
	return results, nil
}

// tokenizeCandidate 合成加权词袋：
// 标题 ×3，演员（前 15）×2，导演/主创 ×2，制片厂/播出网（各前 10）×2，
// 关键词（前 20）×1，类型 ×1，简介前 300 字符 ×1。
func tokenizeCandidate(c *core.Candidate) []string {
	var parts []string

	if c.Title != "" {
		for i := 0; i < 3; i++ {
			parts = append(parts, c.Title)
		}
	}
	parts = append(parts, strings.Join(c.Genres, " "))

	keywords := c.Keywords
	if len(keywords) > maxKeywordTokens {
		keywords = keywords[:maxKeywordTokens]
	}
	parts = append(parts, strings.Join(keywords, " "))

	cast := c.Cast
	if len(cast) > maxCastTokens {
		cast = cast[:maxCastTokens]
	}
	names := make([]string, 0, len(cast))
	for _, m := range cast {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	if len(names) > 0 {
		actorText := strings.Join(names, " ")
		parts = append(parts, actorText, actorText)
	}

	for _, group := range [][]string{c.Directors, c.Creators} {
		if len(group) > 0 {
			text := strings.Join(group, " ")
			parts = append(parts, text, text)
		}
	}
	for _, group := range [][]string{c.Studios, c.Networks} {
		if len(group) > maxStudioTokens {
			group = group[:maxStudioTokens]
		}
		if len(group) > 0 {
			text := strings.Join(group, " ")
			parts = append(parts, text, text)
		}
	}

	if c.Overview != "" {
		overview := c.Overview
		// 按字符截断，避免切断多字节序列
		if runes := []rune(overview); len(runes) > maxOverviewChars {
			overview = string(runes[:maxOverviewChars])
		}
		parts = append(parts, overview)
	}

	return tokenize(strings.Join(parts, " "))
}

func tokenizeQuery(query string) []string {
	return tokenize(query)
}

// tokenize 统一分词规则：小写、按空白切分、去除两端标点、丢弃长度 ≤1 的词。
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.Trim(f, ".,!?()[]{}:;\"'")
		if len(t) > 1 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
