package mcp

import (
	"crypto/subtle"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zx06/infkeychain/internal/errors"
)

const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable_http"
)

const (
	authHeader    = "Authorization"
	bearerPrefix  = "Bearer "
	unauthorized  = "unauthorized"
	headerMissing = "authorization header is required"
)

// HTTPOptions 配置 streamable HTTP 传输。
type HTTPOptions struct {
	// AuthToken 必填；请求需携带 "Authorization: Bearer <token>"。
	AuthToken string
	Logger    *slog.Logger
}

// NewStreamableHTTPHandler 返回带 bearer token 校验的 streamable HTTP handler。
func NewStreamableHTTPHandler(server *mcp.Server, opts HTTPOptions) (http.Handler, error) {
	if server == nil {
		return nil, errors.New(errors.CodeInternal, "mcp server is nil", nil)
	}
	if opts.AuthToken == "" {
		return nil, errors.New(errors.CodeCfgInvalid, "mcp streamable http auth token is required", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
	return requireAuth(handler, opts.AuthToken, logger), nil
}

// NewHTTPServer 包装 handler；密码会经过该连接，因此限制 header 读取时间。
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func requireAuth(next http.Handler, token string, logger *slog.Logger) http.Handler {
	reject := func(w http.ResponseWriter, req *http.Request, msg string) {
		logger.Warn("mcp http request rejected", "remote", req.RemoteAddr, "reason", msg)
		http.Error(w, msg, http.StatusUnauthorized)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		auth := strings.TrimSpace(req.Header.Get(authHeader))
		if auth == "" {
			reject(w, req, headerMissing)
			return
		}
		received, ok := strings.CutPrefix(auth, bearerPrefix)
		if !ok || subtle.ConstantTimeCompare([]byte(received), []byte(token)) != 1 {
			reject(w, req, unauthorized)
			return
		}
		next.ServeHTTP(w, req)
	})
}
