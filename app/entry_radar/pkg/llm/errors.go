package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse 模型返回了空内容
var ErrEmptyResponse = errors.New("model returned an empty response")

// ConfigurationError 缺少或无效的凭据，在任何网络请求之前返回
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "model not configured: " + e.Reason
}

// TransportError 单次调用的网络或服务端错误
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsConfigurationError 判断错误链中是否有 ConfigurationError
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsTransportError 判断错误链中是否有 TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
