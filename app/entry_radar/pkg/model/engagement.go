package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// EngagementRequest 一次分析请求，提交后不再修改
type EngagementRequest struct {
	Company    string   `json:"company" validate:"required"`
	Industry   string   `json:"industry" validate:"required"`
	Markets    []string `json:"markets" validate:"required,min=1,dive,required"`
	Priorities []string `json:"priorities,omitempty"`
	UseCase    string   `json:"use_case,omitempty"`
}

// ErrInvalidEngagement 请求缺少必填字段
var ErrInvalidEngagement = errors.New("invalid engagement")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Normalize 去掉各字段首尾空白，返回新的请求
func (r EngagementRequest) Normalize() EngagementRequest {
	out := EngagementRequest{
		Company:  strings.TrimSpace(r.Company),
		Industry: strings.TrimSpace(r.Industry),
		UseCase:  strings.TrimSpace(r.UseCase),
	}
	out.Markets = make([]string, len(r.Markets))
	for i, m := range r.Markets {
		out.Markets[i] = strings.TrimSpace(m)
	}
	for _, p := range r.Priorities {
		if p = strings.TrimSpace(p); p != "" {
			out.Priorities = append(out.Priorities, p)
		}
	}
	return out
}

// Validate 非空校验
func (r EngagementRequest) Validate() error {
	err := getValidator().Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidEngagement, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidEngagement, strings.Join(fields, ", "))
}

// ParseMarkets 解析逗号分隔的市场列表：去空白、去空项、忽略大小写去重并保持顺序
func ParseMarkets(raw string) []string {
	return dedupe(strings.Split(raw, ","))
}

// DedupeMarkets 对已拆分的市场列表做同样的清洗
func DedupeMarkets(markets []string) []string {
	return dedupe(markets)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// ParsePriorities 按换行或逗号拆分优先事项
func ParsePriorities(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' || r == '\r' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
