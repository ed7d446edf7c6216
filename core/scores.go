package core

import "time"

// ScoreBreakdown 是单次排序中每个候选的分数拆解。
// 四个子分数均在 [0,1]；Penalty 为不喜欢惩罚项；Hybrid 为最终加权结果
// （扣除惩罚后不做下限截断，可为负）。
type ScoreBreakdown struct {
	Hybrid        float64 `json:"hybrid"`
	Content       float64 `json:"content"`
	Collaborative float64 `json:"collaborative"`
	Quality       float64 `json:"quality"`
	Confidence    float64 `json:"confidence"`
	Penalty       float64 `json:"penalty,omitempty"`
}

// WatchedEntry 是观看历史中的一条记录，只用于排除，不会删除。
type WatchedEntry struct {
	ID         int64     `json:"id,omitempty"`
	Title      string    `json:"title"`
	SeriesName string    `json:"series_name,omitempty"`
	Kind       Kind      `json:"kind,omitempty"`
	PlayCount  int       `json:"play_count,omitempty"`
	LastPlayed time.Time `json:"last_played,omitempty"`
	Manual     bool      `json:"manual,omitempty"` // 手动标记，而非来自媒体服务器
}

// DislikeRecord 是"不喜欢"记录，创建后 120 天过期。
// 过期判定只在读取时进行，存储中的记录不会被清除。
type DislikeRecord struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DislikeTTL 是不喜欢记录的有效期（4 个月）。
const DislikeTTL = 120 * 24 * time.Hour

// Active 判断记录在 now 时刻是否仍然生效。
func (d DislikeRecord) Active(now time.Time) bool {
	return now.Before(d.ExpiresAt)
}

// Status 是外部库/请求服务中一条内容的已知状态。
type Status struct {
	InLibrary     bool   `json:"in_library"`
	IsRequested   bool   `json:"is_requested"`
	IsWatched     bool   `json:"is_watched"`
	ServiceStatus string `json:"service_status,omitempty"` // monitored / unmonitored
}

// StatusSource 标记状态的来源，调用方据此区分"没有数据"与"查询失败"。
type StatusSource string

const (
	StatusFromLive    StatusSource = "live"    // 实时查询成功
	StatusFromCache   StatusSource = "cache"   // 命中持久化缓存
	StatusFromDefault StatusSource = "default" // 查询失败，降级为默认值
)

// StatusResult 是单条状态查询的显式结果类型。
// Err 仅在 Source == StatusFromDefault 时可能非空。
type StatusResult struct {
	Status Status
	Source StatusSource
	Err    error
}
