// cmd/mcp-server — HTTP tool endpoint over the symkernel core.
//
// Adapted from the teacher's flat-expression tool server: it now dispatches
// to the full kernel (simplify, expand, diff, series, normal, archive
// encode/decode) instead of a single flat algebra type. Expressions travel
// over the wire as exprjson documents (a structural JSON mirror of node
// kind and children) or as base64 GARC archives, never as a text grammar
// to be parsed — the interactive shell's lexer/parser is explicitly out of
// scope for this kernel.
//
// Usage:
//   mcp-server --port 8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/loveq369/symkernel/archive"
	"github.com/loveq369/symkernel/config"
	"github.com/loveq369/symkernel/exprjson"
	"github.com/loveq369/symkernel/kernel"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var (
	port       int
	configPath string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "symkernel HTTP tool endpoint for AI agent frameworks",
	RunE:  runServer,
}

func main() {
	rootCmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (optional)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	var err error
	logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("mcp-server: build logger: %w", err)
	}
	defer logger.Sync()
	archive.SetLogger(logger)

	cfg := config.DefaultConfig()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("mcp-server: load config: %w", err)
		}
	}
	cfg.Apply()

	mux := http.NewServeMux()
	mux.HandleFunc("/tool", toolHandler)
	mux.HandleFunc("/schema", schemaHandler)
	mux.HandleFunc("/health", healthHandler)

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mcp-server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("mcp-server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// ToolRequest is the wire shape for POST /tool: tool names a registered
// operation, params carries its arguments. Any param of "expression type"
// is an exprjson document, i.e. a plain JSON object, not a string to parse.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse mirrors ToolRequest: Result is an exprjson document when the
// tool produced an expression, String/LaTeX are its rendered forms, Error
// is set instead of Result on failure.
type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func toolHandler(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic in /tool", zap.Any("recover", rec), zap.String("stack", string(debug.Stack())))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req ToolRequest
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ToolResponse{Error: err.Error()})
		return
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, ToolResponse{Error: "invalid JSON: trailing data"})
		return
	}

	resp := handleToolCall(req)
	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

func handleToolCall(req ToolRequest) ToolResponse {
	getExpr := func(key string) (kernel.Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be an expression object", key)
		}
		return exprjson.FromMap(m)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getInt := func(key string) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		n, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return int(n), nil
	}
	result := func(e kernel.Expr) ToolResponse {
		return ToolResponse{Result: exprjson.ToMap(e), String: e.String(), LaTeX: e.LaTeX()}
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return result(kernel.Eval(e))

	case "expand":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		out, err := kernel.Expand(e)
		if err != nil {
			return fail(err)
		}
		return result(out)

	case "normal":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		out, err := kernel.Normal(e)
		if err != nil {
			return fail(err)
		}
		return result(out)

	case "diff":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		wrtName, err := getString("wrt")
		if err != nil {
			return fail(err)
		}
		out, err := kernel.Diff(e, kernel.NewSymbol(wrtName))
		if err != nil {
			return fail(err)
		}
		return result(out)

	case "series":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		wrtName, err := getString("wrt")
		if err != nil {
			return fail(err)
		}
		point, err := getExpr("point")
		if err != nil {
			return fail(err)
		}
		order, err := getInt("order")
		if err != nil {
			return fail(err)
		}
		out, err := kernel.TaylorSeries(e, kernel.NewSymbol(wrtName), point, order)
		if err != nil {
			return fail(err)
		}
		return result(out)

	case "archive_encode":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		var buf bytes.Buffer
		if err := archive.Write(&buf, e); err != nil {
			return fail(err)
		}
		return ToolResponse{Result: base64.StdEncoding.EncodeToString(buf.Bytes())}

	case "archive_decode":
		encoded, err := getString("data")
		if err != nil {
			return fail(err)
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fail(err)
		}
		e, err := archive.Read(bytes.NewReader(raw))
		if err != nil {
			return fail(err)
		}
		return result(e)

	case "matrix":
		return handleMatrixOp(getExpr, getString)

	case "functions":
		return ToolResponse{Result: kernel.RegisteredNames()}
	}

	return fail(fmt.Errorf("unknown tool %q", req.Tool))
}

// handleMatrixOp dispatches the "matrix" tool's sub-operations: add, sub,
// mul, scale, transpose, det, inverse, trace. "a" (and "b", "scalar" where
// applicable) are exprjson documents of type "matrix" (or, for scale's
// scalar, any expression).
func handleMatrixOp(getExpr func(string) (kernel.Expr, error), getString func(string) (string, error)) ToolResponse {
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }
	result := func(e kernel.Expr) ToolResponse {
		return ToolResponse{Result: exprjson.ToMap(e), String: e.String(), LaTeX: e.LaTeX()}
	}
	getMatrix := func(key string) (*kernel.Matrix, error) {
		e, err := getExpr(key)
		if err != nil {
			return nil, err
		}
		m, ok := e.(*kernel.Matrix)
		if !ok {
			return nil, fmt.Errorf("param %s must be a matrix", key)
		}
		return m, nil
	}

	op, err := getString("op")
	if err != nil {
		return fail(err)
	}
	a, err := getMatrix("a")
	if err != nil {
		return fail(err)
	}

	switch op {
	case "add":
		b, err := getMatrix("b")
		if err != nil {
			return fail(err)
		}
		out, err := a.MatAdd(b)
		if err != nil {
			return fail(err)
		}
		return result(out)
	case "sub":
		b, err := getMatrix("b")
		if err != nil {
			return fail(err)
		}
		out, err := a.MatSub(b)
		if err != nil {
			return fail(err)
		}
		return result(out)
	case "mul":
		b, err := getMatrix("b")
		if err != nil {
			return fail(err)
		}
		out, err := a.MatMul(b)
		if err != nil {
			return fail(err)
		}
		return result(out)
	case "scale":
		scalar, err := getExpr("scalar")
		if err != nil {
			return fail(err)
		}
		return result(a.Scale(scalar))
	case "transpose":
		return result(a.Transpose())
	case "trace":
		out, err := a.Trace()
		if err != nil {
			return fail(err)
		}
		return result(out)
	case "det":
		out, err := a.Det()
		if err != nil {
			return fail(err)
		}
		return result(out)
	case "inverse":
		out, err := a.Inverse()
		if err != nil {
			return fail(err)
		}
		return result(out)
	}
	return fail(fmt.Errorf("unknown matrix op %q", op))
}

func schemaHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, schemaDoc)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const schemaDoc = `{
  "tools": [
    {"name": "simplify", "params": {"expr": "exprjson"}},
    {"name": "expand", "params": {"expr": "exprjson"}},
    {"name": "normal", "params": {"expr": "exprjson"}},
    {"name": "diff", "params": {"expr": "exprjson", "wrt": "string"}},
    {"name": "series", "params": {"expr": "exprjson", "wrt": "string", "point": "exprjson", "order": "int"}},
    {"name": "matrix", "params": {"op": "add|sub|mul|scale|transpose|trace|det|inverse", "a": "exprjson matrix", "b": "exprjson matrix (add/sub/mul)", "scalar": "exprjson (scale)"}},
    {"name": "archive_encode", "params": {"expr": "exprjson"}},
    {"name": "archive_decode", "params": {"data": "base64 string"}},
    {"name": "functions", "params": {}}
  ]
}`
