// Package client wraps the platform's REST API. It does no retrying and no
// response caching: every call is one request, and any failure is returned
// to the caller unmodified.
package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"github.com/dpella/frontdp/internal/cli/types"
	"github.com/dpella/frontdp/pkg/logger"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCSV  = "text/csv"
)

// APIClient wraps a Hertz client for HTTP communication with the platform.
type APIClient struct {
	client *client.Client
	server string
	token  string
}

// NewAPIClient creates an API client for the given server. The token may be
// empty for the login call.
func NewAPIClient(server, token string) (*APIClient, error) {
	normalized, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{client: c, server: normalized, token: token}, nil
}

// normalizeServerURL ensures the server address has a scheme and no
// trailing path.
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// do issues one request. body, when non-nil, is marshaled as JSON unless
// rawBody is set; out, when non-nil, receives the unmarshaled response.
func (c *APIClient) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	return c.doRaw(ctx, method, path, payload, contentTypeJSON, out)
}

func (c *APIClient) doRaw(ctx context.Context, method, path string, payload []byte, contentType string, out any) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(method)
	req.SetRequestURI(c.server + path)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.SetContentTypeBytes([]byte(contentType))
		req.SetBody(payload)
	}

	log := logger.FromContext(ctx).With("method", method, "path", path)
	log.Debug("api request")

	if err := c.client.Do(ctx, req, resp); err != nil {
		logger.WithError(log, err).Debug("api request failed")
		return fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		apiErr := newAPIError(status, resp.Body())
		logger.WithError(log, apiErr).Debug("api error response", "status", status)
		return apiErr
	}

	if out != nil {
		if err := sonic.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// Login authenticates and returns the bearer token for the session.
func (c *APIClient) Login(ctx context.Context, username, password string) (string, error) {
	var data types.LoginData
	err := c.do(ctx, consts.MethodPost, endpointLogin, types.LoginRequest{
		Username: username,
		Password: password,
	}, &data)
	if err != nil {
		return "", err
	}
	return data.JWT, nil
}

// Logout invalidates the session token server-side.
func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, consts.MethodPost, endpointLogout, nil, nil)
}

// GetUserInfo fetches name and roles for a handle.
func (c *APIClient) GetUserInfo(ctx context.Context, handle string) (types.UserInfo, error) {
	var info types.UserInfo
	err := c.do(ctx, consts.MethodGet, fmt.Sprintf(endpointUserByHandle, handle), nil, &info)
	return info, err
}

// ListUsers lists all registered users.
func (c *APIClient) ListUsers(ctx context.Context) ([]types.User, error) {
	var users []types.User
	err := c.do(ctx, consts.MethodGet, endpointUsers, nil, &users)
	return users, err
}

// RegisterUser creates a new user account.
func (c *APIClient) RegisterUser(ctx context.Context, req types.RegisterUserRequest) error {
	return c.do(ctx, consts.MethodPost, endpointUsers, req, nil)
}

// UpdateUser changes a user's display name and roles.
func (c *APIClient) UpdateUser(ctx context.Context, handle string, req types.UpdateUserRequest) error {
	return c.do(ctx, consts.MethodPatch, fmt.Sprintf(endpointUserByHandle, handle), req, nil)
}

// DeleteUser removes a user account.
func (c *APIClient) DeleteUser(ctx context.Context, handle string) error {
	return c.do(ctx, consts.MethodDelete, fmt.Sprintf(endpointUserByHandle, handle), nil, nil)
}

// ListDatasets lists the datasets visible to the session.
func (c *APIClient) ListDatasets(ctx context.Context) ([]types.DatasetInfo, error) {
	var datasets []types.DatasetInfo
	err := c.do(ctx, consts.MethodGet, endpointDatasets, nil, &datasets)
	return datasets, err
}

// GetDataset fetches one dataset including its schema.
func (c *APIClient) GetDataset(ctx context.Context, id int) (types.DatasetInfo, error) {
	var ds types.DatasetInfo
	err := c.do(ctx, consts.MethodGet, fmt.Sprintf(endpointDatasetByID, id), nil, &ds)
	return ds, err
}

// totalBudgetBody shapes a budget for the wire: PureDP datasets send
// epsilon only, ApproxDP datasets send both components.
func totalBudgetBody(notion string, budget types.Budget) map[string]float64 {
	body := map[string]float64{"epsilon": budget.Epsilon}
	if notion != types.PureDP {
		body["delta"] = budget.DeltaValue()
	}
	return body
}

// CreateDataset registers a dataset with schema and total budget and
// returns the new dataset's id.
func (c *APIClient) CreateDataset(ctx context.Context, req types.CreateDatasetRequest) (int, error) {
	body := map[string]any{
		"name":           req.Name,
		"owner":          req.Owner,
		"privacy_notion": req.PrivacyNotion,
		"schema":         req.Schema,
		"total_budget":   totalBudgetBody(req.PrivacyNotion, req.TotalBudget),
	}
	var created struct {
		ID int `json:"id"`
	}
	if err := c.do(ctx, consts.MethodPost, endpointDatasets, body, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// EditDataset updates a dataset's name, owner and total budget.
func (c *APIClient) EditDataset(ctx context.Context, id int, req types.EditDatasetRequest) error {
	body := map[string]any{
		"name":         req.Name,
		"owner":        req.Owner,
		"total_budget": totalBudgetBody(req.PrivacyNotion, req.TotalBudget),
	}
	return c.do(ctx, consts.MethodPatch, fmt.Sprintf(endpointDatasetByID, id), body, nil)
}

// DeleteDataset removes a dataset.
func (c *APIClient) DeleteDataset(ctx context.Context, id int) error {
	return c.do(ctx, consts.MethodDelete, fmt.Sprintf(endpointDatasetByID, id), nil, nil)
}

// UploadDatasetData pushes raw CSV text to a registered dataset.
func (c *APIClient) UploadDatasetData(ctx context.Context, id int, data string) error {
	path := fmt.Sprintf(endpointDatasetUpload, id)
	return c.doRaw(ctx, consts.MethodPost, path, []byte(data), contentTypeCSV, nil)
}

// GetUserBudgets lists a user's allocations across datasets.
func (c *APIClient) GetUserBudgets(ctx context.Context, handle string) ([]types.BudgetInfo, error) {
	var budgets []types.BudgetInfo
	err := c.do(ctx, consts.MethodGet, fmt.Sprintf(endpointBudgetUser, handle), nil, &budgets)
	return budgets, err
}

// GetDatasetBudget fetches a dataset's budget accounting including its
// per-analyst allocations.
func (c *APIClient) GetDatasetBudget(ctx context.Context, id int) (types.DatasetBudget, error) {
	var budget types.DatasetBudget
	err := c.do(ctx, consts.MethodGet, fmt.Sprintf(endpointBudgetDataset, id), nil, &budget)
	return budget, err
}

// GetAllocation fetches the budget granted to one user on one dataset.
func (c *APIClient) GetAllocation(ctx context.Context, handle string, datasetID int) (types.BudgetInfo, error) {
	var info types.BudgetInfo
	path := fmt.Sprintf(endpointBudgetAllocation, handle, datasetID)
	err := c.do(ctx, consts.MethodGet, path, nil, &info)
	return info, err
}

// AllocateBudget grants budget to a user on a dataset. The body carries
// epsilon only for PureDP datasets.
func (c *APIClient) AllocateBudget(ctx context.Context, handle string, datasetID int, notion string, budget types.Budget) error {
	path := fmt.Sprintf(endpointBudgetAllocation, handle, datasetID)
	return c.do(ctx, consts.MethodPost, path, totalBudgetBody(notion, budget), nil)
}

// UpdateBudget replaces a user's allocation on a dataset in place.
func (c *APIClient) UpdateBudget(ctx context.Context, handle string, datasetID int, budget types.Budget) error {
	path := fmt.Sprintf(endpointBudgetAllocation, handle, datasetID)
	body := map[string]any{"epsilon": budget.Epsilon}
	if budget.Delta != nil {
		body["delta"] = *budget.Delta
	}
	return c.do(ctx, consts.MethodPatch, path, body, nil)
}

// DeallocateBudget revokes a user's allocation on a dataset.
func (c *APIClient) DeallocateBudget(ctx context.Context, handle string, datasetID int) error {
	path := fmt.Sprintf(endpointBudgetAllocation, handle, datasetID)
	return c.do(ctx, consts.MethodDelete, path, nil, nil)
}

// EvaluateQuery submits a query pipeline for noised evaluation and returns
// the result rows.
func (c *APIClient) EvaluateQuery(ctx context.Context, datasetID int, budget types.Budget, pipeline []map[string]any) ([]types.Result, error) {
	body := map[string]any{
		"dataset": datasetID,
		"budget":  budget,
		"query":   pipeline,
	}
	var resp types.EvaluateResponse
	if err := c.do(ctx, consts.MethodPost, endpointQueryEvaluate, body, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

// QueryAccuracy estimates query accuracy at a budget and confidence level.
// No command exposes this yet; the endpoint exists for parity with the
// server API.
func (c *APIClient) QueryAccuracy(ctx context.Context, handle string, datasetID int, req types.AccuracyRequest) (float64, error) {
	var resp types.AccuracyResponse
	path := fmt.Sprintf(endpointQueryAccuracy, handle, datasetID)
	if err := c.do(ctx, consts.MethodPost, path, req, &resp); err != nil {
		return 0, err
	}
	if len(resp.Accuracy) == 0 {
		return 0, fmt.Errorf("empty accuracy response")
	}
	return resp.Accuracy[0], nil
}
