package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/mediarank/core"
)

func scored(id int64, hybrid float64) *core.Item {
	it := core.NewItem(&core.Candidate{ID: id})
	it.Scores.Hybrid = hybrid
	return it
}

func TestTopNNode(t *testing.T) {
	items := []*core.Item{scored(1, 0.9), scored(2, 0.8), scored(3, 0.7)}

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"截断", 2, 2},
		{"不足不补", 10, 3},
		{"零值不截断", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &TopNNode{N: tt.n}
			out, err := node.Process(context.Background(), nil, items)
			if err != nil {
				t.Fatalf("截断失败: %v", err)
			}
			if len(out) != tt.want {
				t.Errorf("输出条数 = %d, want %d", len(out), tt.want)
			}
		})
	}
}

func TestMinScoreNode(t *testing.T) {
	items := []*core.Item{scored(1, 0.9), scored(2, 0.0), scored(3, -0.2)}

	node := &MinScoreNode{Min: 0, Enabled: true}
	out, err := node.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("过滤失败: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("应过滤负分条目, 实际 %d 条", len(out))
	}

	// 未启用时透传
	off := &MinScoreNode{Min: 0.5}
	out, err = off.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("过滤失败: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("未启用时应透传, 实际 %d 条", len(out))
	}
}
