package search

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rushteam/mediarank/core"
)

func testPool() []*core.Candidate {
	return []*core.Candidate{
		{
			ID:       1,
			Title:    "Spider-Man",
			Kind:     core.KindMovie,
			Genres:   []string{"Action", "Adventure"},
			Keywords: []string{"superhero", "marvel"},
			Overview: "A young man gains spider powers and fights crime in the city.",
		},
		{
			ID:       2,
			Title:    "The Godfather",
			Kind:     core.KindMovie,
			Genres:   []string{"Crime", "Drama"},
			Keywords: []string{"mafia", "family"},
			Overview: "The aging patriarch of a crime dynasty transfers control to his son.",
		},
		{
			ID:       3,
			Title:    "Breaking Bad",
			Kind:     core.KindSeries,
			Genres:   []string{"Crime", "Drama"},
			Keywords: []string{"drugs", "chemistry"},
			Overview: "A chemistry teacher turns to a life of crime.",
		},
	}
}

func buildIndex(t *testing.T) *Index {
	t.Helper()
	idx := &Index{}
	n, err := idx.Build(context.Background(), testPool(), true)
	if err != nil {
		t.Fatalf("构建索引失败: %v", err)
	}
	if n != 3 {
		t.Fatalf("索引候选数 = %d, want 3", n)
	}
	return idx
}

func TestSearchNotBuilt(t *testing.T) {
	idx := &Index{}
	if _, err := idx.Search(context.Background(), "spider", 5); !core.IsNotBuilt(err) {
		t.Errorf("未构建时应返回 NOT_BUILT，实际 %v", err)
	}
}

func TestSearch(t *testing.T) {
	idx := buildIndex(t)

	results, err := idx.Search(context.Background(), "spider", 5)
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("spider 应命中至少一条")
	}
	if results[0].Candidate.ID != 1 {
		t.Errorf("首位应为 Spider-Man, 实际 %s", results[0].Candidate.Title)
	}
	if results[0].Score <= 0 {
		t.Errorf("BM25 命中分应为正, 实际 %v", results[0].Score)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	idx := buildIndex(t)

	tests := []struct {
		name  string
		query string
	}{
		{"空查询", ""},
		{"纯标点", "?! ..."},
		{"单字符词", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := idx.Search(context.Background(), tt.query, 5)
			if err != nil {
				t.Fatalf("搜索失败: %v", err)
			}
			if len(results) != 0 {
				t.Errorf("应返回空结果, 实际 %d 条", len(results))
			}
		})
	}
}

func TestSearchScoreOrder(t *testing.T) {
	idx := buildIndex(t)

	results, err := idx.Search(context.Background(), "crime drama", 5)
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("结果未按分数降序: %v 在 %v 之后", results[i].Score, results[i-1].Score)
		}
	}
}

func TestSearchWithFallback(t *testing.T) {
	idx := buildIndex(t)

	// "god" 长度够但不是完整词，BM25 零命中后回退子串匹配
	results, err := idx.SearchWithFallback(context.Background(), "godfath", 5)
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("回退应命中 1 条, 实际 %d", len(results))
	}
	if results[0].Candidate.ID != 2 {
		t.Errorf("回退应命中 The Godfather, 实际 %s", results[0].Candidate.Title)
	}
	if results[0].Score != 0.0 {
		t.Errorf("回退命中分应为 0, 实际 %v", results[0].Score)
	}
}

func TestSearchWithFallbackEmptyQuery(t *testing.T) {
	idx := buildIndex(t)

	// 空查询不得进入子串回退，否则空串会匹配所有标题
	tests := []struct {
		name  string
		query string
	}{
		{"空查询", ""},
		{"纯空白", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := idx.SearchWithFallback(context.Background(), tt.query, 5)
			if err != nil {
				t.Fatalf("搜索失败: %v", err)
			}
			if len(results) != 0 {
				t.Errorf("空查询应返回空结果, 实际 %d 条", len(results))
			}
		})
	}
}

func TestSearchTopK(t *testing.T) {
	idx := buildIndex(t)

	results, err := idx.Search(context.Background(), "crime drama", 1)
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(results) > 1 {
		t.Errorf("k=1 时应只返回 1 条, 实际 %d", len(results))
	}
}

func TestBuildFromCache(t *testing.T) {
	cache := newFakeStore()
	idx := &Index{Cache: cache}
	if _, err := idx.Build(context.Background(), testPool(), true); err != nil {
		t.Fatalf("构建失败: %v", err)
	}

	// 第二个索引不传候选，应从缓存恢复
	idx2 := &Index{Cache: cache}
	n, err := idx2.Build(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("从缓存构建失败: %v", err)
	}
	if n != 3 {
		t.Errorf("缓存恢复候选数 = %d, want 3", n)
	}
	results, err := idx2.Search(context.Background(), "spider", 5)
	if err != nil || len(results) == 0 {
		t.Fatalf("缓存恢复后搜索失败: %v (%d 条)", err, len(results))
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"小写与去标点", "Hello, World!", []string{"hello", "world"}},
		{"丢弃单字符", "a I spider", []string{"spider"}},
		{"空串", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("tokenize(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenizeCandidateMultibyteOverview(t *testing.T) {
	c := &core.Candidate{
		ID:       9,
		Title:    "Amélie",
		Overview: "a" + strings.Repeat("é", 400),
	}
	tokens := tokenizeCandidate(c)
	for _, tok := range tokens {
		if !utf8.ValidString(tok) {
			t.Fatalf("词 %q 不是合法 UTF-8", tok)
		}
	}
	// 简介按字符截断为前 300 个
	want := "a" + strings.Repeat("é", maxOverviewChars-1)
	found := false
	for _, tok := range tokens {
		if tok == want {
			found = true
		}
	}
	if !found {
		t.Error("简介应截断为前 300 个字符")
	}
}

// fakeStore 是测试用的内存 Store
type fakeStore struct {
	data map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) Name() string { return "fake" }

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return v, nil
}

func (s *fakeStore) Set(_ context.Context, key string, value []byte, _ ...int) error {
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *fakeStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *fakeStore) BatchSet(_ context.Context, kvs map[string][]byte, _ ...int) error {
	for k, v := range kvs {
		s.data[k] = v
	}
	return nil
}

func (s *fakeStore) Close() error { return nil }
