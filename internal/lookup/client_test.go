package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code": code,
		"msg":  "ok",
		"data": data,
	})
}

func newTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/departments/10", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, 0, Department{ID: 10, Name: "研发部"})
	})
	mux.HandleFunc("/api/v1/departments/11", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, 40002, nil)
	})
	mux.HandleFunc("/api/v1/departments/500", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, 90001, nil)
	})
	mux.HandleFunc("/api/v1/organizations/5/sub-dept-ids", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("org_type") != string(OrgTypeCorporation) {
			writeEnvelope(w, http.StatusBadRequest, 10001, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, 0, []int64{10, 12})
	})
	mux.HandleFunc("/api/v1/positions/3", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, 0, Position{ID: 3, Name: "工程师"})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestOrganizationClient_GetDepartment(t *testing.T) {
	server := newTestServer(t)
	client := NewOrganizationClient(ClientConfig{BaseURL: server.URL}, nil)
	ctx := context.Background()

	dept, err := client.GetDepartment(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "研发部", dept.Name)

	_, err = client.GetDepartment(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetDepartment(ctx, 500)
	assert.ErrorIs(t, err, ErrUnavailable)

	// 业务码非 0 视为服务不可用
	_, err = client.GetDepartment(ctx, 11)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOrganizationClient_GetSubDeptIDs(t *testing.T) {
	server := newTestServer(t)
	client := NewOrganizationClient(ClientConfig{BaseURL: server.URL}, nil)
	ctx := context.Background()

	ids, err := client.GetSubDeptIDs(ctx, 5, OrgTypeCorporation)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 12}, ids)

	// 不存在的组织返回空集合
	ids, err = client.GetSubDeptIDs(ctx, 6, OrgTypeCorporation)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPositionClient_GetPosition(t *testing.T) {
	server := newTestServer(t)
	client := NewPositionClient(ClientConfig{BaseURL: server.URL}, nil)

	pos, err := client.GetPosition(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "工程师", pos.Name)

	_, err = client.GetPosition(context.Background(), 4)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClient_Unreachable(t *testing.T) {
	server := newTestServer(t)
	url := server.URL
	server.Close()

	client := NewPositionClient(ClientConfig{BaseURL: url}, nil)
	_, err := client.GetPosition(context.Background(), 3)
	assert.ErrorIs(t, err, ErrUnavailable)
}
