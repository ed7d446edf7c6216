package core

import (
	"strings"

	"github.com/rushteam/mediarank/pkg/utils"
)

// Kind 是候选内容的类型：电影或剧集。
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// CastMember 是演职人员条目，Order 为出场顺位（0 为主演）。
type CastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Candidate 是候选池中的一条内容：元数据 + 评分统计 + 协同信号。
// 生成后不可变，ID 为唯一标识。
type Candidate struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Kind        Kind         `json:"kind"`
	Year        string       `json:"year,omitempty"`
	Genres      []string     `json:"genres,omitempty"`
	Keywords    []string     `json:"keywords,omitempty"`
	Cast        []CastMember `json:"cast,omitempty"`
	Directors   []string     `json:"directors,omitempty"`
	Creators    []string     `json:"creators,omitempty"`
	Studios     []string     `json:"studios,omitempty"`
	Networks    []string     `json:"networks,omitempty"`
	Overview    string       `json:"overview,omitempty"`
	Rating      float64      `json:"rating"`     // 0-10
	VoteCount   int          `json:"vote_count"` // 投票数
	RecStrength int          `json:"rec_strength"`
	Because     []string     `json:"because,omitempty"` // 由哪些已观看内容引出
}

// NormalizedTitle 返回用于观看历史/不喜欢匹配的标准化标题。
func (c *Candidate) NormalizedTitle() string {
	return NormalizeTitle(c.Title)
}

// NormalizeTitle 统一标题归一化规则：小写 + 去首尾空白。
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Item 是排序链路中的统一承载结构：候选内容、分数拆解、标签。
// Labels 用于解释与策略驱动；Scores.Hybrid 用于排序决策。
type Item struct {
	Candidate *Candidate
	Scores    ScoreBreakdown
	Labels    map[string]utils.Label
}

func NewItem(c *Candidate) *Item {
	return &Item{
		Candidate: c,
		Labels:    make(map[string]utils.Label),
	}
}

// ID 返回候选内容的 ID。
func (it *Item) ID() int64 {
	if it.Candidate == nil {
		return 0
	}
	return it.Candidate.ID
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
