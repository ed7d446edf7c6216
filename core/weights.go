package core

// Weights 是混合打分的四路权重。
// 使用前必须 Normalize：归一化后四项之和为 1；
// 若四项之和为 0，则保持全零（混合分数在惩罚前即为 0）。
type Weights struct {
	Content       float64 `json:"content" yaml:"content"`
	Collaborative float64 `json:"collaborative" yaml:"collaborative"`
	Quality       float64 `json:"quality" yaml:"quality"`
	Confidence    float64 `json:"confidence" yaml:"confidence"`
}

// DefaultWeights 是默认权重：内容 0.4 / 协同 0.3 / 质量 0.2 / 置信 0.1。
func DefaultWeights() Weights {
	return Weights{
		Content:       0.40,
		Collaborative: 0.30,
		Quality:       0.20,
		Confidence:    0.10,
	}
}

// Validate 在入口处校验权重范围，每项必须在 [0,1]。
func (w Weights) Validate() error {
	for _, v := range []float64{w.Content, w.Collaborative, w.Quality, w.Confidence} {
		if v < 0 || v > 1 {
			return NewDomainError(ModuleRank, ErrorCodeInvalidInput, "rank: weight out of range [0,1]")
		}
	}
	return nil
}

// Normalize 返回归一化后的权重。总和为 0 时按 1 处理，避免除零，
// 此时权重保持全零。
func (w Weights) Normalize() Weights {
	total := w.Content + w.Collaborative + w.Quality + w.Confidence
	if total == 0 {
		total = 1.0
	}
	return Weights{
		Content:       w.Content / total,
		Collaborative: w.Collaborative / total,
		Quality:       w.Quality / total,
		Confidence:    w.Confidence / total,
	}
}
