package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/rushteam/mediarank/core"
)

// Vectorizer 是内容向量化的统一契约：为候选池中的每个条目产出一个
// 定长向量，行序与输入顺序一致。两种后端可互换：
//   - TFIDFVectorizer：稀疏加权词项向量（无外部依赖，构建即全量）
//   - EmbeddingModel：稠密文本嵌入向量（带磁盘缓存，增量编码）
type Vectorizer interface {
	// Name 返回后端名称（用于日志/缓存 key）
	Name() string

	// Vectorize 为候选池生成向量矩阵。force 为 true 时忽略已有缓存。
	Vectorize(ctx context.Context, candidates []*core.Candidate, force bool) ([][]float64, error)
}

// FeatureText 构建稀疏向量化的特征文本：
// 类型 ×3、关键词 ×2，演员/导演/主创姓名去空格保持单词项，末尾拼接简介。
func FeatureText(c *core.Candidate) string {
	parts := make([]string, 0, 3*len(c.Genres)+2*len(c.Keywords)+len(c.Cast)+8)
	for i := 0; i < 3; i++ {
		parts = append(parts, c.Genres...)
	}
	for i := 0; i < 2; i++ {
		parts = append(parts, c.Keywords...)
	}
	for _, m := range c.Cast {
		if m.Name != "" {
			parts = append(parts, strings.ReplaceAll(m.Name, " ", "_"))
		}
	}
	for _, d := range c.Directors {
		parts = append(parts, strings.ReplaceAll(d, " ", "_"))
	}
	for _, cr := range c.Creators {
		parts = append(parts, strings.ReplaceAll(cr, " ", "_"))
	}
	if c.Overview != "" {
		parts = append(parts, c.Overview)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// EmbeddingText 构建稠密嵌入的单条文本表示。
// 格式固定，保证缓存向量与文本一一对应。
func EmbeddingText(c *core.Candidate) string {
	return fmt.Sprintf("Title: %s. Genres: %s. Keywords: %s. Overview: %s",
		c.Title,
		strings.Join(c.Genres, ", "),
		strings.Join(c.Keywords, ", "),
		c.Overview,
	)
}
