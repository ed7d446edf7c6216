package dsl

import (
	"testing"

	"github.com/rushteam/mediarank/core"
	"github.com/rushteam/mediarank/pkg/utils"
)

func testItem() *core.Item {
	it := core.NewItem(&core.Candidate{
		ID:        1,
		Title:     "Dune",
		Kind:      core.KindMovie,
		Genres:    []string{"Sci-Fi", "Adventure"},
		Rating:    8.1,
		VoteCount: 3000,
	})
	it.Scores.Hybrid = 0.72
	it.PutLabel("reason", utils.Label{Value: "Based on your viewing history", Source: "rank.hybrid"})
	return it
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"空表达式恒真", ``, true},
		{"数值比较", `item.rating > 7.0`, true},
		{"数值不满足", `item.rating > 9.0`, false},
		{"类型相等", `item.kind == "movie"`, true},
		{"包含", `"Sci-Fi" in item.genres`, true},
		{"逻辑组合", `item.kind == "movie" && item.vote_count > 1000`, true},
		{"混合分", `item.score > 0.7`, true},
		{"标签存在性", `label.reason != null`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEval(testItem(), &core.RankContext{}).Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("求值失败: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"语法错误", `item.rating >`},
		{"非布尔结果", `item.rating`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEval(testItem(), &core.RankContext{}).Evaluate(tt.expr); err == nil {
				t.Error("应返回错误")
			}
		})
	}
}
