package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger = zap.NewNop()
	goleak.VerifyTestMain(m)
}

func doTool(t *testing.T, body interface{}) (*httptest.ResponseRecorder, ToolResponse) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/tool", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	toolHandler(rec, req)

	var resp ToolResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func exprMap(t string, fields map[string]interface{}) map[string]interface{} {
	m := map[string]interface{}{"type": t}
	for k, v := range fields {
		m[k] = v
	}
	return m
}

func symbolExpr(name string) map[string]interface{} {
	return exprMap("symbol", map[string]interface{}{"name": name})
}

func numExpr(class, value string) map[string]interface{} {
	return exprMap("num", map[string]interface{}{"class": class, "value": value})
}

func TestToolHandlerRejectsGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/tool", nil)
	rec := httptest.NewRecorder()
	toolHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestToolHandlerRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/tool", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	toolHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToolHandlerSimplify(t *testing.T) {
	body := ToolRequest{
		Tool: "simplify",
		Params: map[string]interface{}{
			"expr": exprMap("sum", map[string]interface{}{
				"args": []interface{}{symbolExpr("x"), symbolExpr("x")},
			}),
		},
	}
	rec, resp := doTool(t, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "2*x", resp.String)
}

func TestToolHandlerDiff(t *testing.T) {
	body := ToolRequest{
		Tool: "diff",
		Params: map[string]interface{}{
			"expr": exprMap("power", map[string]interface{}{
				"base": symbolExpr("x"),
				"exp":  numExpr("integer", "3"),
			}),
			"wrt": "x",
		},
	}
	_, resp := doTool(t, body)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "3*x^2", resp.String)
}

func TestToolHandlerUnknownTool(t *testing.T) {
	body := ToolRequest{Tool: "does-not-exist", Params: map[string]interface{}{}}
	rec, resp := doTool(t, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, resp.Error)
}

func TestToolHandlerMissingParam(t *testing.T) {
	body := ToolRequest{Tool: "simplify", Params: map[string]interface{}{}}
	_, resp := doTool(t, body)
	assert.NotEmpty(t, resp.Error)
}

func TestToolHandlerMatrixDet(t *testing.T) {
	matrixExpr := exprMap("matrix", map[string]interface{}{
		"rows": 2,
		"cols": 2,
		"data": []interface{}{
			[]interface{}{numExpr("integer", "1"), numExpr("integer", "2")},
			[]interface{}{numExpr("integer", "3"), numExpr("integer", "4")},
		},
	})
	body := ToolRequest{
		Tool: "matrix",
		Params: map[string]interface{}{
			"op": "det",
			"a":  matrixExpr,
		},
	}
	_, resp := doTool(t, body)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "-2", resp.String)
}

func TestToolHandlerFunctions(t *testing.T) {
	body := ToolRequest{Tool: "functions", Params: map[string]interface{}{}}
	_, resp := doTool(t, body)
	assert.Empty(t, resp.Error)
	names, ok := resp.Result.([]interface{})
	require.True(t, ok)
	assert.Contains(t, names, "sin")
}

func TestToolHandlerArchiveRoundTrip(t *testing.T) {
	encodeBody := ToolRequest{
		Tool: "archive_encode",
		Params: map[string]interface{}{
			"expr": symbolExpr("x"),
		},
	}
	_, encoded := doTool(t, encodeBody)
	require.Empty(t, encoded.Error)
	data, ok := encoded.Result.(string)
	require.True(t, ok)

	decodeBody := ToolRequest{
		Tool:   "archive_decode",
		Params: map[string]interface{}{"data": data},
	}
	_, decoded := doTool(t, decodeBody)
	assert.Empty(t, decoded.Error)
	assert.Equal(t, "x", decoded.String)
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	healthHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSchemaHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/schema", nil)
	rec := httptest.NewRecorder()
	schemaHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "simplify")
}
