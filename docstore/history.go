package docstore

import (
	"context"
	"time"

	"github.com/rushteam/mediarank/core"
)

// Candidates 读取候选池。文档缺失时返回空切片。
func (d *Docs) Candidates(_ context.Context) ([]*core.Candidate, error) {
	var out []*core.Candidate
	if err := d.degrade(d.readDoc(candidatesFile, &out), candidatesFile); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveCandidates 整体重写候选池。
func (d *Docs) SaveCandidates(_ context.Context, candidates []*core.Candidate) error {
	return d.writeDoc(candidatesFile, candidates)
}

// WatchHistory 读取观看历史。文档缺失时返回空切片。
func (d *Docs) WatchHistory(_ context.Context) ([]core.WatchedEntry, error) {
	var out []core.WatchedEntry
	if err := d.degrade(d.readDoc(watchHistoryFile, &out), watchHistoryFile); err != nil {
		return nil, err
	}
	return out, nil
}

// AddWatched 追加一条观看记录。已有同名（标准化标题）记录时只更新
// 播放信息，不追加重复条目。
func (d *Docs) AddWatched(ctx context.Context, entry core.WatchedEntry) error {
	history, err := d.WatchHistory(ctx)
	if err != nil {
		return err
	}
	if entry.LastPlayed.IsZero() {
		entry.LastPlayed = time.Now()
	}

	title := core.NormalizeTitle(entry.Title)
	for i, h := range history {
		if core.NormalizeTitle(h.Title) == title {
			history[i].PlayCount++
			history[i].LastPlayed = entry.LastPlayed
			return d.writeDoc(watchHistoryFile, history)
		}
	}
	if entry.PlayCount == 0 {
		entry.PlayCount = 1
	}
	history = append(history, entry)
	return d.writeDoc(watchHistoryFile, history)
}

// Dislikes 读取全部不喜欢记录（含已过期的，存储从不清理）。
func (d *Docs) Dislikes(_ context.Context) ([]core.DislikeRecord, error) {
	var out []core.DislikeRecord
	if err := d.degrade(d.readDoc(dislikesFile, &out), dislikesFile); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveDislikes 返回 now 时刻仍然生效的不喜欢记录。
func (d *Docs) ActiveDislikes(ctx context.Context, now time.Time) ([]core.DislikeRecord, error) {
	all, err := d.Dislikes(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]core.DislikeRecord, 0, len(all))
	for _, rec := range all {
		if rec.Active(now) {
			active = append(active, rec)
		}
	}
	return active, nil
}

// AddDislike 追加一条不喜欢记录。
// 同一内容已有生效中记录时不重复追加；已过期的旧记录保留，追加新记录。
func (d *Docs) AddDislike(ctx context.Context, rec core.DislikeRecord) error {
	all, err := d.Dislikes(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = rec.CreatedAt.Add(core.DislikeTTL)
	}

	for _, old := range all {
		if old.ID == rec.ID && old.Active(now) {
			return nil
		}
	}
	all = append(all, rec)
	return d.writeDoc(dislikesFile, all)
}

// LibraryIDs 读取媒体库/请求服务缓存的 ID 集合。文档缺失时返回空集合。
func (d *Docs) LibraryIDs(_ context.Context) (map[int64]struct{}, error) {
	var ids []int64
	if err := d.degrade(d.readDoc(libraryFile, &ids), libraryFile); err != nil {
		return nil, err
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// SaveLibraryIDs 整体重写媒体库 ID 缓存。
func (d *Docs) SaveLibraryIDs(_ context.Context, ids map[int64]struct{}) error {
	out := make([]int64, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	return d.writeDoc(libraryFile, out)
}
