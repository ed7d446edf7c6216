// Package engine 把各模块组装为可直接调用的推荐引擎：
// 混合推荐、相似推荐、检索、榜单、反馈与数据刷新。
package engine

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/mediarank/cache"
	"github.com/rushteam/mediarank/config"
	"github.com/rushteam/mediarank/core"
	"github.com/rushteam/mediarank/docstore"
	"github.com/rushteam/mediarank/filter"
	"github.com/rushteam/mediarank/model"
	"github.com/rushteam/mediarank/pipeline"
	"github.com/rushteam/mediarank/rank"
	"github.com/rushteam/mediarank/rerank"
	"github.com/rushteam/mediarank/search"
	"github.com/rushteam/mediarank/semantic"
	"github.com/rushteam/mediarank/store"
)

// 榜单参数：IMDB 风格加权评分的最小票数与先验均值。
const (
	topRatedMinVotes = 50
	topRatedMean     = 6.0
)

// Engine 是推荐引擎的门面。
//
// 所有读操作基于内存中的索引，索引由 Rebuild 构建；
// 词法索引与语义索引必须同步重建，保持候选顺序一致。
type Engine struct {
	Docs     *docstore.Docs
	Search   *search.Index
	Semantic core.VectorIndex
	Sets     *cache.StatusSets
	Status   *cache.StatusCache
	Logger   zerolog.Logger

	mu         sync.RWMutex
	candidates []*core.Candidate
	byID       map[int64]*core.Candidate
}

// New 按配置组装引擎：文档层、缓存后端、向量后端。
// encoder 仅在 embedding 后端时需要，tfidf 后端传 nil。
func New(cfg *config.Config, encoder model.Encoder) (*Engine, error) {
	docs := docstore.New(cfg.DataDir)

	var backend core.Store
	if cfg.Redis.Addr != "" {
		rs, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		backend = rs
	} else {
		fs, err := store.NewFileStore(cfg.DataDir + "/cache.json")
		if err != nil {
			return nil, err
		}
		backend = fs
	}

	var vectorizer interface {
		Name() string
		Vectorize(ctx context.Context, candidates []*core.Candidate, force bool) ([][]float64, error)
	}
	switch cfg.Semantic.Backend {
	case "embedding":
		if encoder == nil {
			return nil, core.NewDomainError(core.ModuleSemantic, core.ErrorCodeInvalidInput,
				"engine: embedding backend requires an encoder")
		}
		em := model.NewEmbeddingModel(encoder, backend)
		em.BatchSize = cfg.Semantic.BatchSize
		vectorizer = em
	default:
		vectorizer = model.NewTFIDFVectorizer()
	}

	eng := &Engine{
		Docs:     docs,
		Search:   &search.Index{Cache: backend},
		Semantic: &semantic.Index{Vectorizer: vectorizer},
		Logger:   zerolog.Nop(),
	}
	eng.Sets = &cache.StatusSets{Loader: &docLoader{docs: docs}}
	eng.Status = &cache.StatusCache{Store: backend}
	return eng, nil
}

// docLoader 用文档层实现时效集合的数据来源。
type docLoader struct {
	docs *docstore.Docs
}

func (l *docLoader) LoadLibraryIDs(ctx context.Context) (map[int64]struct{}, error) {
	return l.docs.LibraryIDs(ctx)
}

func (l *docLoader) LoadWatchedTitles(ctx context.Context) (map[string]struct{}, error) {
	history, err := l.docs.WatchHistory(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]struct{}, len(history))
	for _, h := range history {
		titles[core.NormalizeTitle(h.Title)] = struct{}{}
		if h.SeriesName != "" {
			titles[core.NormalizeTitle(h.SeriesName)] = struct{}{}
		}
	}
	return titles, nil
}

// Rebuild 重新载入候选池并同步重建词法/语义索引与观影者画像。
// force 为 true 时忽略所有缓存全量重建。
func (e *Engine) Rebuild(ctx context.Context, force bool) error {
	candidates, err := e.Docs.Candidates(ctx)
	if err != nil {
		return err
	}

	if _, err := e.Search.Build(ctx, candidates, force); err != nil {
		return err
	}
	if err := e.Semantic.Build(ctx, candidates, force); err != nil {
		return err
	}

	history, err := e.Docs.WatchHistory(ctx)
	if err != nil {
		return err
	}
	if len(candidates) > 0 {
		if err := e.Semantic.BuildProfile(ctx, history); err != nil {
			return err
		}
	}

	byID := make(map[int64]*core.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	e.mu.Lock()
	e.candidates = candidates
	e.byID = byID
	e.mu.Unlock()

	e.Logger.Info().Int("candidates", len(candidates)).Bool("force", force).Msg("indexes rebuilt")
	return nil
}

// pool 返回当前候选池快照。
func (e *Engine) pool() []*core.Candidate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.candidates
}

// Candidate 按 ID 查候选。
func (e *Engine) Candidate(id int64) (*core.Candidate, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.byID[id]
	return c, ok
}

// RecommendOptions 是单次推荐请求的参数。
type RecommendOptions struct {
	Limit int
	Kind  core.Kind // 为空时不限类型
	Genre string    // 为空时不限类型标签

	// Rule 是可选的 CEL 过滤表达式，如 `item.rating >= 7.0`。
	Rule string

	// MinScore 非 nil 时过滤混合分低于该值的候选。
	MinScore *float64

	// Weights 非 nil 时覆盖设置中的权重。
	Weights *core.Weights
}

// Recommend 执行完整推荐链路：排除过滤 → 混合打分 → 截断。
func (e *Engine) Recommend(ctx context.Context, opts RecommendOptions) ([]*core.Item, error) {
	candidates := e.pool()
	if len(candidates) == 0 {
		return nil, nil
	}

	weights, err := e.resolveWeights(ctx, opts.Weights)
	if err != nil {
		return nil, err
	}

	rctx, err := e.buildRankContext(ctx, weights)
	if err != nil {
		return nil, err
	}

	items := make([]*core.Item, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, core.NewItem(c))
	}

	// 离线分数缺失时现场计算，存在时直接采用
	var precomputed map[int64]core.ScoreBreakdown
	if scores, err := e.Docs.ScoreDoc(ctx); err == nil && len(scores) > 0 {
		precomputed = scores
	}

	nodes := []pipeline.Node{
		&filter.FilterNode{Filters: []filter.Filter{
			&filter.WatchedFilter{},
			&filter.DislikeFilter{},
			&filter.LibraryFilter{},
			&filter.KindFilter{Kind: opts.Kind},
			&filter.GenreFilter{Genre: opts.Genre},
			&filter.RuleFilter{Expr: opts.Rule},
		}},
		&rank.HybridNode{Index: e.Semantic, Precomputed: precomputed},
	}
	if opts.MinScore != nil {
		nodes = append(nodes, &rerank.MinScoreNode{Min: *opts.MinScore, Enabled: true})
	}
	nodes = append(nodes, &rerank.TopNNode{N: opts.Limit})

	p := &pipeline.Pipeline{Nodes: nodes}
	return p.Run(ctx, rctx, items)
}

// resolveWeights 确定本次请求权重：请求覆盖 > 设置 > 默认，并做入口校验。
func (e *Engine) resolveWeights(ctx context.Context, override *core.Weights) (core.Weights, error) {
	if override != nil {
		if err := override.Validate(); err != nil {
			return core.Weights{}, err
		}
		return *override, nil
	}
	settings, err := e.Docs.LoadSettings(ctx)
	if err != nil {
		return core.Weights{}, err
	}
	return settings.Weights, nil
}

// buildRankContext 组装排除集合与生效中的不喜欢记录。
func (e *Engine) buildRankContext(ctx context.Context, weights core.Weights) (*core.RankContext, error) {
	watched, err := e.Sets.WatchedTitles(ctx)
	if err != nil {
		return nil, err
	}
	libraryIDs, err := e.Sets.LibraryIDs(ctx)
	if err != nil {
		return nil, err
	}
	dislikes, err := e.Docs.ActiveDislikes(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return &core.RankContext{
		Watched:    watched,
		LibraryIDs: libraryIDs,
		Dislikes:   dislikes,
		Weights:    weights,
	}, nil
}

// Reasons 拆出条目累积的全部推荐理由。
func Reasons(item *core.Item) []string {
	if item == nil || item.Labels == nil {
		return nil
	}
	return item.Labels["reason"].SplitValues()
}

// Similar 返回与指定候选最相似的条目，已排除观看/库内/不喜欢内容。
func (e *Engine) Similar(ctx context.Context, id int64, limit int) ([]*core.Item, error) {
	sims, err := e.Semantic.SimilarTo(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	if len(sims) == 0 {
		return nil, nil
	}

	rctx, err := e.buildRankContext(ctx, core.DefaultWeights())
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, limit)
	for _, s := range sims {
		c, ok := e.Candidate(s.ID)
		if !ok {
			continue
		}
		if rctx.IsWatched(c.Title) || rctx.InLibrary(c.ID) || dislikedIn(rctx.Dislikes, c) {
			continue
		}
		item := core.NewItem(c)
		item.Scores.Content = s.Similarity
		item.Scores.Hybrid = s.Similarity
		out = append(out, item)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func hasGenre(c *core.Candidate, genre string) bool {
	for _, g := range c.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

func dislikedIn(dislikes []core.DislikeRecord, c *core.Candidate) bool {
	title := c.NormalizedTitle()
	for _, d := range dislikes {
		if d.ID == c.ID || core.NormalizeTitle(d.Title) == title {
			return true
		}
	}
	return false
}

// SearchCandidates 在候选池上执行 BM25 检索，零命中时回退子串匹配。
func (e *Engine) SearchCandidates(ctx context.Context, query string, k int) ([]search.Result, error) {
	return e.Search.SearchWithFallback(ctx, query, k)
}

// Dislike 记录一条不喜欢反馈并立即作废排除集合。
func (e *Engine) Dislike(ctx context.Context, id int64) error {
	c, ok := e.Candidate(id)
	if !ok {
		return core.NewDomainError(core.ModuleDocs, core.ErrorCodeNotFound, "engine: candidate not found")
	}
	rec := core.DislikeRecord{
		ID:    c.ID,
		Title: c.Title,
		Kind:  c.Kind,
	}
	if err := e.Docs.AddDislike(ctx, rec); err != nil {
		return err
	}
	e.Sets.Invalidate()
	e.Logger.Info().Int64("id", id).Str("title", c.Title).Msg("dislike recorded")
	return nil
}

// MarkWatched 手动标记一条内容为已观看并立即作废排除集合。
func (e *Engine) MarkWatched(ctx context.Context, title string, kind core.Kind) error {
	if title == "" {
		return core.NewDomainError(core.ModuleDocs, core.ErrorCodeInvalidInput, "engine: empty title")
	}
	entry := core.WatchedEntry{
		Title:  title,
		Kind:   kind,
		Manual: true,
	}
	if err := e.Docs.AddWatched(ctx, entry); err != nil {
		return err
	}
	e.Sets.Invalidate()
	return nil
}

// TopRated 返回榜单：IMDB 风格加权评分，票数不足者不上榜。
// 榜单与推荐链路共用排除规则：已观看与不喜欢的内容不上榜。
func (e *Engine) TopRated(ctx context.Context, kind core.Kind, genre string, limit int) ([]*core.Item, error) {
	rctx, err := e.buildRankContext(ctx, core.DefaultWeights())
	if err != nil {
		return nil, err
	}

	candidates := e.pool()
	out := make([]*core.Item, 0, limit)
	for _, c := range candidates {
		if kind != "" && c.Kind != kind {
			continue
		}
		if genre != "" && !hasGenre(c, genre) {
			continue
		}
		if rctx.IsWatched(c.Title) || dislikedIn(rctx.Dislikes, c) {
			continue
		}
		wr, ok := model.WeightedRating(c.Rating, c.VoteCount, topRatedMinVotes, topRatedMean)
		if !ok {
			continue
		}
		item := core.NewItem(c)
		item.Scores.Hybrid = wr
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Scores.Hybrid > out[j].Scores.Hybrid
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Genres 返回候选池中出现过的全部类型标签，去重排序。
func (e *Engine) Genres(_ context.Context) []string {
	seen := make(map[string]struct{})
	for _, c := range e.pool() {
		for _, g := range c.Genres {
			if g != "" {
				seen[g] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// GenerateScores 离线计算全池分数文档并落盘。
// 内容分来自画像相似度，协同分按池内最大推荐强度归一，
// 质量/置信分由评分统计计算。
func (e *Engine) GenerateScores(ctx context.Context) error {
	candidates := e.pool()
	if len(candidates) == 0 {
		return core.NewDomainError(core.ModuleDocs, core.ErrorCodeMissingData, "engine: empty candidate pool")
	}

	sims, err := e.Semantic.ProfileSimilarities(ctx)
	if err != nil {
		return err
	}

	ratings := make([]float64, 0, len(candidates))
	maxStrength := 1
	for _, c := range candidates {
		ratings = append(ratings, c.Rating)
		if c.RecStrength > maxStrength {
			maxStrength = c.RecStrength
		}
	}
	globalMean := model.GlobalMean(ratings)

	scores := make(map[int64]core.ScoreBreakdown, len(candidates))
	for _, c := range candidates {
		content := 0.0
		if sim, ok := sims[c.ID]; ok && sim > 0 {
			content = sim
		}
		collab := float64(c.RecStrength) / float64(maxStrength)
		if collab > 1 {
			collab = 1
		}
		scores[c.ID] = core.ScoreBreakdown{
			Content:       content,
			Collaborative: collab,
			Quality:       model.BayesianQuality(c.Rating, c.VoteCount, globalMean, model.QualityPriorVotes),
			Confidence:    model.Confidence(c.Rating, c.VoteCount),
		}
	}

	if err := e.Docs.SaveScoreDoc(ctx, scores); err != nil {
		return err
	}
	e.Logger.Info().Int("count", len(scores)).Msg("score document generated")
	return nil
}
