package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 索引错误：NOT_BUILT（构建前调用搜索/相似度）
//   - 数据源错误：MISSING_DATA（源文档缺失，调用方降级为空结果）
//   - 外部依赖错误：LOOKUP_FAILED（状态查询不可达，降级为缓存/默认值）
//   - 边界校验错误：INVALID_INPUT（权重越界等，在入口处拒绝）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_BUILT", "MISSING_DATA"）
	Message string // 错误消息
	Module  string // 模块名称（如 "search", "semantic", "cache"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotBuilt     = "NOT_BUILT"     // 索引尚未构建
	ErrorCodeMissingData  = "MISSING_DATA"  // 源文档缺失
	ErrorCodeLookupFailed = "LOOKUP_FAILED" // 外部状态查询失败
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效
)

// 模块名称常量
const (
	ModuleStore    = "store"    // 存储模块
	ModuleSearch   = "search"   // 词法检索模块
	ModuleSemantic = "semantic" // 语义向量模块
	ModuleCache    = "cache"    // 缓存模块
	ModuleDocs     = "docstore" // 文档模块
	ModuleRank     = "rank"     // 排序模块
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotBuilt 检查错误是否为 NOT_BUILT
func IsNotBuilt(err error) bool { return hasCode(err, ErrorCodeNotBuilt) }

// IsMissingData 检查错误是否为 MISSING_DATA
func IsMissingData(err error) bool { return hasCode(err, ErrorCodeMissingData) }

// IsLookupFailed 检查错误是否为 LOOKUP_FAILED
func IsLookupFailed(err error) bool { return hasCode(err, ErrorCodeLookupFailed) }

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }
