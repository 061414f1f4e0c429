package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ClientConfig HTTP 客户端配置
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int // 重试属于传输层配置，默认不重试
}

// envelope 协作服务的标准响应结构
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type httpClient struct {
	http   *resty.Client
	logger *zap.Logger
}

func newHTTPClient(cfg ClientConfig, logger *zap.Logger) *httpClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "application/json")

	if logger == nil {
		logger = zap.NewNop()
	}
	return &httpClient{http: client, logger: logger}
}

// get 发起 GET 请求并把 data 字段解析到 out
func (c *httpClient) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	var body envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(&body).
		SetError(&body).
		Get(path)
	if err != nil {
		c.logger.Warn("调用组织服务失败", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.IsError() {
		c.logger.Warn("组织服务返回错误",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("msg", body.Msg),
		)
		return fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode())
	}
	if body.Code != 0 {
		return fmt.Errorf("%w: code=%d msg=%s", ErrUnavailable, body.Code, body.Msg)
	}
	if len(body.Data) == 0 || string(body.Data) == "null" {
		return ErrNotFound
	}
	if err := json.Unmarshal(body.Data, out); err != nil {
		return fmt.Errorf("解析组织服务响应失败: %w", err)
	}
	return nil
}

// OrganizationClient 基于 HTTP 的组织服务客户端
type OrganizationClient struct {
	*httpClient
}

// NewOrganizationClient 创建组织服务客户端
func NewOrganizationClient(cfg ClientConfig, logger *zap.Logger) *OrganizationClient {
	return &OrganizationClient{httpClient: newHTTPClient(cfg, logger)}
}

// GetSubDeptIDs 查询组织下的全部部门 ID
func (c *OrganizationClient) GetSubDeptIDs(ctx context.Context, orgID int64, orgType OrgType) ([]int64, error) {
	var ids []int64
	path := "/api/v1/organizations/" + strconv.FormatInt(orgID, 10) + "/sub-dept-ids"
	err := c.get(ctx, path, map[string]string{"org_type": string(orgType)}, &ids)
	if errors.Is(err, ErrNotFound) {
		return []int64{}, nil
	}
	return ids, err
}

// GetDepartment 查询部门
func (c *OrganizationClient) GetDepartment(ctx context.Context, deptID int64) (*Department, error) {
	var dept Department
	if err := c.get(ctx, "/api/v1/departments/"+strconv.FormatInt(deptID, 10), nil, &dept); err != nil {
		return nil, err
	}
	return &dept, nil
}

// PositionClient 基于 HTTP 的职位服务客户端
type PositionClient struct {
	*httpClient
}

// NewPositionClient 创建职位服务客户端
func NewPositionClient(cfg ClientConfig, logger *zap.Logger) *PositionClient {
	return &PositionClient{httpClient: newHTTPClient(cfg, logger)}
}

// GetPosition 查询职位
func (c *PositionClient) GetPosition(ctx context.Context, positionID int64) (*Position, error) {
	var pos Position
	if err := c.get(ctx, "/api/v1/positions/"+strconv.FormatInt(positionID, 10), nil, &pos); err != nil {
		return nil, err
	}
	return &pos, nil
}
