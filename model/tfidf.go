package model

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/rushteam/mediarank/core"
)

// TFIDFVectorizer 是稀疏加权词项向量后端。
//
// 词表规则：
//   - unigram + bigram
//   - 文档频率 < MinDocFreq（默认 2）或 > MaxDocRatio（默认 0.8）的词项被丢弃
//   - 词表按语料词频截断到 MaxFeatures（默认 5000）
//   - 英文停用词不入表
//
// 向量为平滑 IDF 的 TF-IDF，L2 归一化，便于直接做余弦（点积）。
type TFIDFVectorizer struct {
	MaxFeatures int     // 词表上限，默认 5000
	MinDocFreq  int     // 最小文档频率，默认 2
	MaxDocRatio float64 // 最大文档频率占比，默认 0.8

	vocab map[string]int // term -> column
}

func NewTFIDFVectorizer() *TFIDFVectorizer {
	return &TFIDFVectorizer{
		MaxFeatures: 5000,
		MinDocFreq:  2,
		MaxDocRatio: 0.8,
	}
}

func (v *TFIDFVectorizer) Name() string { return "tfidf" }

// VocabSize 返回拟合后的词表大小。
func (v *TFIDFVectorizer) VocabSize() int { return len(v.vocab) }

// Vectorize 全量构建：TF-IDF 没有增量语义，force 参数被忽略。
func (v *TFIDFVectorizer) Vectorize(_ context.Context, candidates []*core.Candidate, _ bool) ([][]float64, error) {
	docs := make([][]string, len(candidates))
	for i, c := range candidates {
		docs[i] = ngramTerms(tfidfTokens(FeatureText(c)))
	}

	v.fit(docs)

	n := float64(len(docs))
	df := v.documentFrequencies(docs)
	matrix := make([][]float64, len(docs))
	for i, terms := range docs {
		vec := make([]float64, len(v.vocab))
		for _, t := range terms {
			col, ok := v.vocab[t]
			if !ok {
				continue
			}
			vec[col]++
		}
		// 平滑 IDF：ln((1+N)/(1+df)) + 1
		for t, col := range v.vocab {
			if vec[col] == 0 {
				continue
			}
			idf := math.Log((1+n)/(1+float64(df[t]))) + 1
			vec[col] *= idf
		}
		l2Normalize(vec)
		matrix[i] = vec
	}
	return matrix, nil
}

// fit 构建词表：统计文档频率与语料词频，过滤后按词频截断。
func (v *TFIDFVectorizer) fit(docs [][]string) {
	maxFeatures := v.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = 5000
	}
	minDF := v.MinDocFreq
	if minDF <= 0 {
		minDF = 2
	}
	maxRatio := v.MaxDocRatio
	if maxRatio <= 0 {
		maxRatio = 0.8
	}

	df := v.documentFrequencies(docs)
	tf := make(map[string]int)
	for _, terms := range docs {
		for _, t := range terms {
			tf[t]++
		}
	}

	maxDF := int(maxRatio * float64(len(docs)))
	type termCount struct {
		term  string
		count int
	}
	kept := make([]termCount, 0, len(tf))
	for t, c := range tf {
		if df[t] < minDF || df[t] > maxDF {
			continue
		}
		kept = append(kept, termCount{term: t, count: c})
	}
	// 词频降序，同频按字典序，保证词表确定性
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].count != kept[j].count {
			return kept[i].count > kept[j].count
		}
		return kept[i].term < kept[j].term
	})
	if len(kept) > maxFeatures {
		kept = kept[:maxFeatures]
	}

	v.vocab = make(map[string]int, len(kept))
	for i, tc := range kept {
		v.vocab[tc.term] = i
	}
}

func (v *TFIDFVectorizer) documentFrequencies(docs [][]string) map[string]int {
	df := make(map[string]int)
	for _, terms := range docs {
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}
	return df
}

// tfidfTokens 切词：长度 ≥2 的字母/数字/下划线序列，剔除停用词。
func tfidfTokens(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) < 2 {
			continue
		}
		if _, stop := englishStopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ngramTerms 生成 unigram + bigram（bigram 以空格连接）。
func ngramTerms(tokens []string) []string {
	terms := make([]string, 0, 2*len(tokens))
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

func l2Normalize(vec []float64) {
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
}

// englishStopwords 是常见英文停用词表（sklearn 风格的子集）。
var englishStopwords = func() map[string]struct{} {
	words := []string{
		"a", "about", "above", "after", "again", "against", "all", "also", "am",
		"an", "and", "any", "are", "as", "at", "be", "because", "been", "before",
		"being", "below", "between", "both", "but", "by", "can", "cannot",
		"could", "did", "do", "does", "doing", "down", "during", "each", "few",
		"for", "from", "further", "had", "has", "have", "having", "he", "her",
		"here", "hers", "herself", "him", "himself", "his", "how", "if", "in",
		"into", "is", "it", "its", "itself", "just", "me", "more", "most", "my",
		"myself", "no", "nor", "not", "now", "of", "off", "on", "once", "only",
		"or", "other", "our", "ours", "ourselves", "out", "over", "own", "same",
		"she", "should", "so", "some", "such", "than", "that", "the", "their",
		"theirs", "them", "themselves", "then", "there", "these", "they", "this",
		"those", "through", "to", "too", "under", "until", "up", "very", "was",
		"we", "were", "what", "when", "where", "which", "while", "who", "whom",
		"why", "will", "with", "you", "your", "yours", "yourself", "yourselves",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
