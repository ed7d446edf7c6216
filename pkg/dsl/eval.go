package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/mediarank/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是规则表达式解释器，使用 CEL (Common Expression Language) 实现。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.rating > 7.0 / item.score >= 0.5
//   - 类型：item.kind == "movie"
//   - 包含："Sci-Fi" in item.genres
//   - 逻辑：item.kind == "series" && item.vote_count > 500
//   - 标签：label.filtered != null（检查是否存在）
//
// 示例：
//   - `item.rating >= 7.5 && item.vote_count > 1000` → 高分高热度
//   - `"Horror" in item.genres` → 恐怖片
type Eval struct {
	item *core.Item
	rctx *core.RankContext
	env  *cel.Env
}

// NewEval 创建一个新的表达式解释器。
func NewEval(item *core.Item, rctx *core.RankContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item: item,
		rctx: rctx,
		env:  env,
	}
}

// Evaluate 解析并执行表达式，返回布尔结果。
// 空表达式恒为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		// 访问不存在的 key 时 CEL 返回错误，
		// 应使用 label.key != null 检查存在性
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	labels := make(map[string]interface{})
	if e.item.Labels != nil {
		for k, v := range e.item.Labels {
			labels[k] = v.Value
		}
	}

	item := map[string]interface{}{
		"id":     e.item.ID(),
		"score":  e.item.Scores.Hybrid,
		"labels": labels,
	}
	if c := e.item.Candidate; c != nil {
		item["title"] = c.Title
		item["kind"] = string(c.Kind)
		item["year"] = c.Year
		item["genres"] = c.Genres
		item["keywords"] = c.Keywords
		item["rating"] = c.Rating
		item["vote_count"] = c.VoteCount
		item["rec_strength"] = c.RecStrength
	}

	rctx := map[string]interface{}{}
	if e.rctx != nil {
		rctx["viewer"] = e.rctx.Viewer
		rctx["params"] = e.rctx.Params
	}

	return map[string]interface{}{
		"item":  item,
		"label": labels,
		"rctx":  rctx,
	}
}
