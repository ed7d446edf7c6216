package docstore

import (
	"context"
	"strconv"
	"time"

	"github.com/rushteam/mediarank/core"
)

// ScoreDoc 读取离线分数文档，按候选 ID 索引。文档缺失时返回空映射。
func (d *Docs) ScoreDoc(_ context.Context) (map[int64]core.ScoreBreakdown, error) {
	// JSON 对象的键是字符串，读写时做一次 ID 转换
	var raw map[string]core.ScoreBreakdown
	if err := d.degrade(d.readDoc(scoresFile, &raw), scoresFile); err != nil {
		return nil, err
	}
	out := make(map[int64]core.ScoreBreakdown, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out, nil
}

// SaveScoreDoc 整体重写离线分数文档。
func (d *Docs) SaveScoreDoc(_ context.Context, scores map[int64]core.ScoreBreakdown) error {
	raw := make(map[string]core.ScoreBreakdown, len(scores))
	for id, sb := range scores {
		raw[strconv.FormatInt(id, 10)] = sb
	}
	return d.writeDoc(scoresFile, raw)
}

// Settings 是可在线调整的排序参数。
type Settings struct {
	Weights   core.Weights `json:"weights"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
}

// LoadSettings 读取调权设置。文档缺失时返回默认权重。
func (d *Docs) LoadSettings(_ context.Context) (Settings, error) {
	var s Settings
	err := d.readDoc(settingsFile, &s)
	if err != nil {
		if core.IsMissingData(err) {
			return Settings{Weights: core.DefaultWeights()}, nil
		}
		return Settings{}, err
	}
	return s, nil
}

// SaveSettings 校验并整体重写调权设置。
func (d *Docs) SaveSettings(_ context.Context, s Settings) error {
	if err := s.Weights.Validate(); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	return d.writeDoc(settingsFile, s)
}

// RunStatus 是数据刷新流程的状态记录，供轮询查询。
type RunStatus struct {
	Step      string    `json:"step"`
	Status    string    `json:"status"` // idle / running / done / failed
	Message   string    `json:"message,omitempty"`
	Progress  float64   `json:"progress"` // 0-1
	StartedAt time.Time `json:"started_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// LoadRunStatus 读取刷新状态。文档缺失时返回 idle。
func (d *Docs) LoadRunStatus(_ context.Context) (RunStatus, error) {
	var rs RunStatus
	err := d.readDoc(updateStatusFile, &rs)
	if err != nil {
		if core.IsMissingData(err) {
			return RunStatus{Status: "idle"}, nil
		}
		return RunStatus{}, err
	}
	return rs, nil
}

// SaveRunStatus 整体重写刷新状态。
func (d *Docs) SaveRunStatus(_ context.Context, rs RunStatus) error {
	rs.UpdatedAt = time.Now()
	return d.writeDoc(updateStatusFile, rs)
}
