package rpc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/System-rat/mcsmp/internal/logger"
	"github.com/System-rat/mcsmp/internal/models"
)

const apiPrefix = "/mcsmp/api/v1"

/**
 * Client of a running 'mcsmp server'
 * @description
 * - One typed method per management route
 * - API errors come back as *APIError and match the internal/models sentinels
 */
type Client struct {
	config *HTTPConfig
	client *http.Client
}

/**
 * Create new management API client
 * @param {*HTTPConfig} config - Client configuration, nil uses DefaultHTTPConfig("")
 * @returns {*Client} Client instance
 * @example
 * client := rpc.NewClient(rpc.DefaultHTTPConfig("localhost:1337"))
 * servers, err := client.Servers(ctx, "")
 */
func NewClient(config *HTTPConfig) *Client {
	if config == nil {
		config = DefaultHTTPConfig("")
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// do 发送请求，body 为 nil 时不带请求体，out 为 nil 时忽略响应体
func (c *Client) do(ctx context.Context, method, path string, params map[string]interface{}, body, out interface{}) error {
	url, err := buildURL(c.config.baseURL(), path, params)
	if err != nil {
		return err
	}
	reader, err := serializeData(body)
	if err != nil {
		return err
	}

	logger.Debugf("Sending %s request to %s", method, url)

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return deserializeResponse(resp, out)
}

func serverPath(name, action string) string {
	if action == "" {
		return apiPrefix + "/servers/" + name
	}
	return apiPrefix + "/servers/" + name + "/" + action
}

func (c *Client) Healthz(ctx context.Context) (*models.HealthResponse, error) {
	var out models.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Servers 列出服务器，filter 为名称片段
func (c *Client) Servers(ctx context.Context, filter string) ([]models.ServerDetail, error) {
	var params map[string]interface{}
	if filter != "" {
		params = map[string]interface{}{"name": filter}
	}
	var out []models.ServerDetail
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/servers", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RunningServers(ctx context.Context) ([]models.ServerDetail, error) {
	var out []models.ServerDetail
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/servers/running", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Server(ctx context.Context, name string) (*models.ServerDetail, error) {
	var out models.ServerDetail
	if err := c.do(ctx, http.MethodGet, serverPath(name, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Start(ctx context.Context, name string) (*models.ServerDetail, error) {
	var out models.ServerDetail
	if err := c.do(ctx, http.MethodPost, serverPath(name, "start"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stop(ctx context.Context, name string) (*models.ServerDetail, error) {
	var out models.ServerDetail
	if err := c.do(ctx, http.MethodPost, serverPath(name, "stop"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Command(ctx context.Context, name, command string) error {
	return c.do(ctx, http.MethodPost, serverPath(name, "command"), nil, models.CommandRequest{Command: command}, nil)
}

// Log 返回最新的 limit 行输出
func (c *Client) Log(ctx context.Context, name string, limit int) (*models.LogResponse, error) {
	var out models.LogResponse
	params := map[string]interface{}{"limit": limit}
	if err := c.do(ctx, http.MethodGet, serverPath(name, "log"), params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Close 关闭空闲连接
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
