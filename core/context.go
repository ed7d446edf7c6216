package core

// RankContext 承载单次排序请求的观影者状态，贯穿整个 Pipeline 透传。
//
// Watched / LibraryIDs 来自 CacheLayer 的时效集合；
// Dislikes 只包含读取时仍然生效的记录。
type RankContext struct {
	Viewer string // 观影者标识（单观影者场景可为空）

	// Watched 是标准化后的已观看标题集合（排除用）
	Watched map[string]struct{}

	// Dislikes 是仍在生效的不喜欢记录
	Dislikes []DislikeRecord

	// LibraryIDs 是媒体库/下载管理服务中已存在或已请求的内容 ID
	LibraryIDs map[int64]struct{}

	// Weights 是本次请求使用的权重（未归一化，由 rank 节点归一化）
	Weights Weights

	// Params 请求级上下文参数：kind / genre / min_score / 规则表达式等
	Params map[string]any
}

// IsWatched 检查标题（标准化后）是否在已观看集合中。
func (rctx *RankContext) IsWatched(title string) bool {
	if rctx.Watched == nil {
		return false
	}
	_, ok := rctx.Watched[NormalizeTitle(title)]
	return ok
}

// InLibrary 检查 ID 是否在媒体库集合中。
func (rctx *RankContext) InLibrary(id int64) bool {
	if rctx.LibraryIDs == nil {
		return false
	}
	_, ok := rctx.LibraryIDs[id]
	return ok
}

// Param 读取请求级参数。
func (rctx *RankContext) Param(key string) (any, bool) {
	if rctx.Params == nil {
		return nil, false
	}
	v, ok := rctx.Params[key]
	return v, ok
}
