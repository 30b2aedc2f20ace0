// Package llmtest 提供测试用的假聊天模型
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
)

// Handler 根据 system/user 提示词返回回复内容
type Handler func(system, user string) (string, error)

// FakeChatModel 实现 model.BaseChatModel，记录所有调用
type FakeChatModel struct {
	Handler Handler
	Usage   *schema.TokenUsage

	mu           sync.Mutex
	users        []string
	configs      []dm.ModelConfig
	factoryCalls int
}

var _ model.BaseChatModel = (*FakeChatModel)(nil)

// New 创建假模型
func New(h Handler) *FakeChatModel {
	return &FakeChatModel{Handler: h}
}

// Generate 实现 model.BaseChatModel
func (f *FakeChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var system, user string
	for _, m := range input {
		switch m.Role {
		case schema.System:
			system = m.Content
		case schema.User:
			user = m.Content
		}
	}

	f.mu.Lock()
	f.users = append(f.users, user)
	f.mu.Unlock()

	content, err := f.Handler(system, user)
	if err != nil {
		return nil, err
	}
	return &schema.Message{
		Role:    schema.Assistant,
		Content: content,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: "stop",
			Usage:        f.Usage,
		},
	}, nil
}

// Stream 不支持
func (f *FakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

// Factory 返回可赋值给 llm.ChatModelFactory 的工厂函数
func (f *FakeChatModel) Factory() func(context.Context, dm.ModelConfig) (model.BaseChatModel, error) {
	return func(_ context.Context, cfg dm.ModelConfig) (model.BaseChatModel, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.factoryCalls++
		f.configs = append(f.configs, cfg)
		return f, nil
	}
}

// Prompts 已收到的 user 提示词
func (f *FakeChatModel) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.users...)
}

// FactoryCalls 工厂被调用的次数
func (f *FakeChatModel) FactoryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.factoryCalls
}

// Configs 工厂收到的配置
func (f *FakeChatModel) Configs() []dm.ModelConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dm.ModelConfig(nil), f.configs...)
}
