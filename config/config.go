// Package config 提供引擎的 YAML 配置加载与校验。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/mediarank/core"
)

// Config 是引擎的顶层配置（支持 YAML）。
type Config struct {
	// DataDir 是 JSON 源文档与文件缓存所在目录。
	DataDir string `yaml:"data_dir"`

	// Semantic 是语义相似后端配置。
	Semantic SemanticConfig `yaml:"semantic"`

	// Weights 是混合打分的默认权重。
	Weights core.Weights `yaml:"weights"`

	// Redis 非空时使用 Redis 作为缓存后端，否则使用本地文件。
	Redis RedisConfig `yaml:"redis"`
}

// SemanticConfig 选择向量后端：tfidf（默认，零外部依赖）或 embedding。
type SemanticConfig struct {
	Backend string `yaml:"backend"` // tfidf / embedding
	// BatchSize 是 embedding 后端的编码批大小。
	BatchSize int `yaml:"batch_size"`
}

// RedisConfig 是 Redis 缓存后端配置。
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// Default 返回可直接使用的默认配置。
func Default() *Config {
	return &Config{
		DataDir: "data",
		Semantic: SemanticConfig{
			Backend:   "tfidf",
			BatchSize: 32,
		},
		Weights: core.DefaultWeights(),
	}
}

// Load 从 YAML 文件加载配置，缺省字段回填默认值。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Semantic.Backend == "" {
		c.Semantic.Backend = "tfidf"
	}
	if c.Semantic.BatchSize <= 0 {
		c.Semantic.BatchSize = 32
	}
	zero := core.Weights{}
	if c.Weights == zero {
		c.Weights = core.DefaultWeights()
	}
}

// Validate 校验配置的合法性。
func (c *Config) Validate() error {
	switch c.Semantic.Backend {
	case "tfidf", "embedding":
	default:
		return fmt.Errorf("unknown semantic backend: %s", c.Semantic.Backend)
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	return nil
}
