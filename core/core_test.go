package core

import (
	"math"
	"testing"
	"time"

	"github.com/rushteam/mediarank/pkg/utils"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"小写化", "Breaking Bad", "breaking bad"},
		{"去首尾空白", "  The Wire ", "the wire"},
		{"空串", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.title); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestWeightsNormalize(t *testing.T) {
	w := Weights{Content: 2, Collaborative: 1, Quality: 1, Confidence: 0}
	n := w.Normalize()
	sum := n.Content + n.Collaborative + n.Quality + n.Confidence
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("归一化之和 = %v, want 1", sum)
	}
	if math.Abs(n.Content-0.5) > 1e-9 {
		t.Errorf("Content = %v, want 0.5", n.Content)
	}

	// 全零权重保持全零
	zero := Weights{}.Normalize()
	if zero != (Weights{}) {
		t.Errorf("全零权重归一化后 = %+v, want 全零", zero)
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Errorf("默认权重应合法: %v", err)
	}
	bad := Weights{Content: -0.1}
	if err := bad.Validate(); !IsInvalidInput(err) {
		t.Errorf("负权重应返回 INVALID_INPUT, 实际 %v", err)
	}
}

func TestDislikeActive(t *testing.T) {
	now := time.Now()
	rec := DislikeRecord{CreatedAt: now, ExpiresAt: now.Add(DislikeTTL)}
	if !rec.Active(now) {
		t.Error("未过期记录应生效")
	}
	if rec.Active(now.Add(DislikeTTL + time.Second)) {
		t.Error("过期记录不应生效")
	}
	// 恰好到期时刻不再生效
	if rec.Active(rec.ExpiresAt) {
		t.Error("到期时刻应不再生效")
	}
}

func TestRankContext(t *testing.T) {
	rctx := &RankContext{
		Watched:    map[string]struct{}{"the wire": {}},
		LibraryIDs: map[int64]struct{}{9: {}},
	}
	if !rctx.IsWatched("The Wire") {
		t.Error("大小写不敏感匹配失败")
	}
	if rctx.IsWatched("Other") {
		t.Error("未观看标题误报")
	}
	if !rctx.InLibrary(9) || rctx.InLibrary(10) {
		t.Error("库内判定错误")
	}
}

func TestPutLabelMerge(t *testing.T) {
	it := NewItem(&Candidate{ID: 1})
	it.PutLabel("tag", utils.Label{Value: "a", Source: "one"})
	it.PutLabel("tag", utils.Label{Value: "b", Source: "two"})

	lbl := it.Labels["tag"]
	if lbl.Value != "a|b" {
		t.Errorf("合并值 = %q, want a|b", lbl.Value)
	}
}

func TestDomainErrorChecks(t *testing.T) {
	err := NewDomainError(ModuleSearch, ErrorCodeNotBuilt, "x")
	if !IsNotBuilt(err) {
		t.Error("IsNotBuilt 判定失败")
	}
	if IsMissingData(err) {
		t.Error("错误代码误判")
	}
	if IsNotBuilt(nil) {
		t.Error("nil 误判")
	}
}
