package runtime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownKind 未注册的智能体类型
var ErrUnknownKind = errors.New("runtime: unknown agent type")

// Runtime 智能体运行时
// 闭集：只有注册表里列出的类型可以被实例化，不做任何动态查找
type Runtime interface {
	// Kind 运行时对应的智能体类型
	Kind() string
	// ProcessMessage 处理一条用户消息并返回回复（模拟实现）
	ProcessMessage(ctx context.Context, userID, content string) (string, error)
}

// Registry 运行时注册表
type Registry struct {
	runtimes map[string]Runtime
}

// NewRegistry 创建注册表并注册全部内置运行时
func NewRegistry() *Registry {
	registry := &Registry{runtimes: map[string]Runtime{}}
	for _, rt := range []Runtime{
		&simulatedRuntime{kind: "customer_support", replyFormat: "Recebi sua solicitação: %q. Um atendente virtual está analisando."},
		&simulatedRuntime{kind: "sales", replyFormat: "Obrigado pelo interesse! Sobre %q, posso agendar uma conversa."},
		&simulatedRuntime{kind: "marketing", replyFormat: "Boa ideia! Vou considerar %q na próxima campanha."},
		&simulatedRuntime{kind: "finance", replyFormat: "Sua questão financeira %q foi registrada para análise."},
		&simulatedRuntime{kind: "hr", replyFormat: "Sua mensagem %q foi encaminhada ao time de RH."},
	} {
		registry.runtimes[rt.Kind()] = rt
	}
	return registry
}

// Get 按智能体类型取运行时
func (r *Registry) Get(kind string) (Runtime, error) {
	rt, ok := r.runtimes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return rt, nil
}

// Kinds 返回已注册的类型列表（排序后）
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.runtimes))
	for kind := range r.runtimes {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// simulatedRuntime 模拟运行时，返回固定格式的回复
type simulatedRuntime struct {
	kind        string
	replyFormat string
}

func (s *simulatedRuntime) Kind() string {
	return s.kind
}

func (s *simulatedRuntime) ProcessMessage(ctx context.Context, userID, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errors.New("runtime: empty message")
	}
	return fmt.Sprintf(s.replyFormat, content), nil
}
