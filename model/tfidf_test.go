package model

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/mediarank/core"
)

func tfidfPool() []*core.Candidate {
	return []*core.Candidate{
		{ID: 1, Title: "A", Genres: []string{"Action", "Thriller"}, Keywords: []string{"hero"}, Overview: "explosive action thriller with a lone hero"},
		{ID: 2, Title: "B", Genres: []string{"Action", "Thriller"}, Keywords: []string{"hero"}, Overview: "another action thriller about a hero on the run"},
		{ID: 3, Title: "C", Genres: []string{"Romance", "Drama"}, Keywords: []string{"love"}, Overview: "quiet romance drama about love and loss"},
		{ID: 4, Title: "D", Genres: []string{"Romance", "Drama"}, Keywords: []string{"love"}, Overview: "romance drama where love conquers distance"},
	}
}

func TestTFIDFVectorize(t *testing.T) {
	v := NewTFIDFVectorizer()
	matrix, err := v.Vectorize(context.Background(), tfidfPool(), false)
	if err != nil {
		t.Fatalf("向量化失败: %v", err)
	}
	if len(matrix) != 4 {
		t.Fatalf("矩阵行数 = %d, want 4", len(matrix))
	}

	dim := len(matrix[0])
	if dim == 0 {
		t.Fatal("词表为空")
	}
	for i, row := range matrix {
		if len(row) != dim {
			t.Errorf("第 %d 行维度 %d != %d", i, len(row), dim)
		}
	}
}

// 每行向量 L2 归一（零向量除外）
func TestTFIDFL2Norm(t *testing.T) {
	v := NewTFIDFVectorizer()
	matrix, err := v.Vectorize(context.Background(), tfidfPool(), false)
	if err != nil {
		t.Fatalf("向量化失败: %v", err)
	}
	for i, row := range matrix {
		var norm float64
		for _, x := range row {
			norm += x * x
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}
		if math.Abs(norm-1.0) > 1e-9 {
			t.Errorf("第 %d 行 L2 范数 = %v, want 1", i, norm)
		}
	}
}

// 同题材条目的余弦相似度应高于跨题材条目
func TestTFIDFSimilarityStructure(t *testing.T) {
	v := NewTFIDFVectorizer()
	matrix, err := v.Vectorize(context.Background(), tfidfPool(), false)
	if err != nil {
		t.Fatalf("向量化失败: %v", err)
	}

	dot := func(a, b []float64) float64 {
		var s float64
		for i := range a {
			s += a[i] * b[i]
		}
		return s
	}
	sameGenre := dot(matrix[0], matrix[1])
	crossGenre := dot(matrix[0], matrix[2])
	if sameGenre <= crossGenre {
		t.Errorf("同题材相似度 %v 应高于跨题材 %v", sameGenre, crossGenre)
	}
}

func TestFeatureText(t *testing.T) {
	c := &core.Candidate{
		Title:    "X",
		Genres:   []string{"Sci-Fi"},
		Keywords: []string{"space"},
		Cast:     []core.CastMember{{Name: "Jane Doe", Order: 0}},
		Overview: "A space adventure.",
	}
	text := FeatureText(c)
	if text == "" {
		t.Fatal("特征文本为空")
	}
	// 人名用下划线连接成单一词项
	if want := "jane_doe"; !contains(text, want) {
		t.Errorf("特征文本应包含 %q: %q", want, text)
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}

func TestEmbeddingText(t *testing.T) {
	c := &core.Candidate{
		Title:    "X",
		Genres:   []string{"Sci-Fi", "Drama"},
		Keywords: []string{"space"},
		Overview: "A space adventure.",
	}
	text := EmbeddingText(c)
	if !contains(text, "Title: X") {
		t.Errorf("嵌入文本缺少标题段: %q", text)
	}
	if !contains(text, "Sci-Fi") {
		t.Errorf("嵌入文本缺少类型段: %q", text)
	}
}
