package filter

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/mediarank/core"
)

func item(id int64, title string, kind core.Kind, genres ...string) *core.Item {
	return core.NewItem(&core.Candidate{ID: id, Title: title, Kind: kind, Genres: genres})
}

func TestWatchedFilter(t *testing.T) {
	rctx := &core.RankContext{
		Watched: map[string]struct{}{"breaking bad": {}},
	}
	f := &WatchedFilter{}

	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"完全匹配", "Breaking Bad", true},
		{"大小写不敏感", "BREAKING BAD", true},
		{"未观看", "Better Call Saul", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ShouldFilter(context.Background(), rctx, item(1, tt.title, core.KindSeries))
			if err != nil {
				t.Fatalf("过滤失败: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestDislikeFilter(t *testing.T) {
	now := time.Now()
	rctx := &core.RankContext{
		Dislikes: []core.DislikeRecord{
			{ID: 7, Title: "Bad Show", ExpiresAt: now.Add(time.Hour)},
		},
	}
	f := &DislikeFilter{}

	tests := []struct {
		name string
		it   *core.Item
		want bool
	}{
		{"ID 命中", item(7, "Renamed", core.KindSeries), true},
		{"标题命中", item(8, "bad show", core.KindSeries), true},
		{"无命中", item(9, "Good Show", core.KindSeries), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ShouldFilter(context.Background(), rctx, tt.it)
			if err != nil {
				t.Fatalf("过滤失败: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLibraryFilter(t *testing.T) {
	rctx := &core.RankContext{
		LibraryIDs: map[int64]struct{}{42: {}},
	}
	f := &LibraryFilter{}

	got, _ := f.ShouldFilter(context.Background(), rctx, item(42, "In Library", core.KindMovie))
	if !got {
		t.Error("库内内容应被过滤")
	}
	got, _ = f.ShouldFilter(context.Background(), rctx, item(43, "Not In Library", core.KindMovie))
	if got {
		t.Error("库外内容不应被过滤")
	}
}

func TestKindFilter(t *testing.T) {
	f := &KindFilter{Kind: core.KindMovie}

	got, _ := f.ShouldFilter(context.Background(), nil, item(1, "A", core.KindSeries))
	if !got {
		t.Error("类型不符应被过滤")
	}
	got, _ = f.ShouldFilter(context.Background(), nil, item(2, "B", core.KindMovie))
	if got {
		t.Error("类型相符不应被过滤")
	}

	// Kind 为空时不过滤
	empty := &KindFilter{}
	got, _ = empty.ShouldFilter(context.Background(), nil, item(3, "C", core.KindSeries))
	if got {
		t.Error("未指定类型时不应过滤")
	}
}

func TestGenreFilter(t *testing.T) {
	f := &GenreFilter{Genre: "sci-fi"}

	got, _ := f.ShouldFilter(context.Background(), nil, item(1, "A", core.KindMovie, "Sci-Fi", "Action"))
	if got {
		t.Error("类型标签大小写不敏感命中时不应过滤")
	}
	got, _ = f.ShouldFilter(context.Background(), nil, item(2, "B", core.KindMovie, "Romance"))
	if !got {
		t.Error("无命中标签应被过滤")
	}
}

func TestRuleFilter(t *testing.T) {
	it := core.NewItem(&core.Candidate{
		ID: 1, Title: "A", Kind: core.KindMovie,
		Genres: []string{"Sci-Fi"}, Rating: 8.2, VoteCount: 1200,
	})

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"空表达式不过滤", "", false},
		{"条件满足保留", `item.rating >= 7.0 && item.vote_count > 500`, false},
		{"条件不满足过滤", `item.rating >= 9.0`, true},
		{"类型包含", `"Sci-Fi" in item.genres`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &RuleFilter{Expr: tt.expr}
			got, err := f.ShouldFilter(context.Background(), &core.RankContext{}, it)
			if err != nil {
				t.Fatalf("规则求值失败: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterNode(t *testing.T) {
	rctx := &core.RankContext{
		Watched: map[string]struct{}{"watched one": {}},
	}
	node := &FilterNode{Filters: []Filter{&WatchedFilter{}}}

	items := []*core.Item{
		item(1, "Watched One", core.KindMovie),
		item(2, "Fresh One", core.KindMovie),
	}
	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("过滤失败: %v", err)
	}
	if len(out) != 1 || out[0].ID() != 2 {
		t.Fatalf("应只保留未观看条目, 实际 %d 条", len(out))
	}
	// 被过滤条目带上标签
	if lbl, ok := items[0].Labels["filtered"]; !ok || lbl.Source != "filter.watched" {
		t.Errorf("被过滤条目应记录过滤原因, 实际 %+v", items[0].Labels)
	}
}
