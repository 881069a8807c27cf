package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/System-rat/mcsmp/internal/models"
)

// HTTPConfig 定义管理接口客户端配置
type HTTPConfig struct {
	Address string        // mcsmp server 侦听地址
	Timeout time.Duration // 默认超时时间
	BaseURL string        // 基础URL，为空时由Address生成
}

// DefaultHTTPConfig 返回默认客户端配置
func DefaultHTTPConfig(address string) *HTTPConfig {
	if address == "" {
		address = "localhost:1337"
	}
	return &HTTPConfig{
		Address: address,
		Timeout: 10 * time.Second,
	}
}

func (c *HTTPConfig) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if strings.Contains(c.Address, "://") {
		return c.Address
	}
	return "http://" + c.Address
}

/**
 * Error returned by the management API
 * @property {int} StatusCode - HTTP status
 * @property {string} Code - models.ErrorResponse code
 * @property {string} Message - models.ErrorResponse error text
 * @description
 * - Unwraps to the sentinel in internal/models matching Code, so errors.Is works across the wire
 */
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *APIError) Unwrap() error {
	return models.ErrorForCode(e.Code)
}

// buildURL 构建完整的URL
func buildURL(baseURL, path string, params map[string]interface{}) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	// 添加路径
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")

	// 添加查询参数
	if len(params) > 0 {
		q := u.Query()
		for key, value := range params {
			switch v := value.(type) {
			case string:
				q.Set(key, v)
			case bool:
				q.Set(key, fmt.Sprintf("%t", v))
			default:
				q.Set(key, fmt.Sprintf("%v", v))
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// serializeData 序列化请求数据
func serializeData(data interface{}) (io.Reader, error) {
	if data == nil {
		return nil, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize data: %w", err)
	}

	return bytes.NewReader(jsonData), nil
}

// deserializeResponse 解析响应，非2xx状态返回 *APIError
func deserializeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	var errBody models.ErrorResponse
	if len(body) > 0 && json.Unmarshal(body, &errBody) == nil && errBody.Error != "" {
		apiErr.Code = errBody.Code
		apiErr.Message = errBody.Error
	}
	return apiErr
}
