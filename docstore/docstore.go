// Package docstore 管理数据目录下的 JSON 源文档：候选池、观看历史、
// 不喜欢记录、离线分数、调权设置与刷新状态。
//
// 设计原则：
//   - 每类文档一个文件，读取整体反序列化，写入整体重写 + 原子 rename
//   - 源文档缺失时降级为空结果（记录日志），不中断调用方
//   - 文档损坏（JSON 解析失败）是硬错误，向上返回
package docstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/rushteam/mediarank/core"
)

// 数据目录下的文档文件名。
const (
	candidatesFile   = "candidates.json"
	watchHistoryFile = "watch_history.json"
	dislikesFile     = "dislikes.json"
	libraryFile      = "library.json"
	scoresFile       = "scores.json"
	settingsFile     = "settings.json"
	updateStatusFile = "update_status.json"
)

// Docs 是数据目录上的类型化文档访问层。
type Docs struct {
	Dir    string
	Logger zerolog.Logger
}

func New(dir string) *Docs {
	return &Docs{Dir: dir, Logger: zerolog.Nop()}
}

// readDoc 读取并反序列化一个文档。文件缺失时返回 MISSING_DATA。
func (d *Docs) readDoc(name string, out any) error {
	path := filepath.Join(d.Dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.NewDomainError(core.ModuleDocs, core.ErrorCodeMissingData, "docstore: missing document: "+name)
		}
		return err
	}
	if len(raw) == 0 {
		return core.NewDomainError(core.ModuleDocs, core.ErrorCodeMissingData, "docstore: empty document: "+name)
	}
	return json.Unmarshal(raw, out)
}

// writeDoc 整体重写一个文档：先写临时文件，再原子重命名。
func (d *Docs) writeDoc(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(d.Dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// degrade 把 MISSING_DATA 降级为 nil 并记录日志，其余错误原样返回。
func (d *Docs) degrade(err error, name string) error {
	if err == nil {
		return nil
	}
	if core.IsMissingData(err) {
		d.Logger.Debug().Str("doc", name).Msg("document missing, degrading to empty")
		return nil
	}
	return err
}
