package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"simlab-dashboard/internal/handler"
	"simlab-dashboard/internal/model"
	"simlab-dashboard/internal/pkg/logger"
	"simlab-dashboard/internal/pkg/ssh"
	"simlab-dashboard/internal/pkg/ssh/sshtest"
	"simlab-dashboard/internal/service"
	"simlab-dashboard/internal/session"
)

const sampleNode = `NodeName=node03 Arch=x86_64 CoresPerSocket=16
   CPUAlloc=8 CPUEfctv=32 CPUTot=32 CPULoad=7.91
   Gres=gpu:a100:4(S:0-1)
   RealMemory=256000 AllocMem=128000 FreeMem=120000 Sockets=2 Boards=1
   State=MIXED ThreadsPerCore=1
   AllocTRES=cpu=8,mem=125G,gres/gpu=2`

func newEngine(t *testing.T) (*gin.Engine, *sshtest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := sshtest.NewServer(t, map[string]string{"alice": "s3cret"}, func(cmd string) (string, string, int) {
		if cmd == "scontrol show node 'node03'" {
			return sampleNode, "", 0
		}
		return "", "unexpected command", 127
	})

	connector := service.NewSSHConnector(ssh.SSHConfig{
		Host:           srv.Host,
		Port:           srv.Port,
		ConnectTimeout: 5 * time.Second,
		CommandTimeout: 5 * time.Second,
		KnownHostsFile: srv.WriteKnownHosts(t),
	})
	catalog := service.NewNodeCatalog([]string{"node01", "node02", "node03"})
	sshService := service.NewSSHService(connector, connector.Target(), logger.Nop())
	metricsService := service.NewMetricsService(connector, catalog, "scontrol", logger.Nop())

	tokens, err := session.NewTokens("")
	require.NoError(t, err)
	sessions := handler.NewSessions(session.NewMemoryStore(time.Hour), tokens, "simlab_session", false)

	r := gin.New()
	RegisterRoutes(r, sessions,
		handler.NewAuthHandler(sshService, sessions),
		handler.NewNodeHandler(metricsService, sessions),
		handler.NewWSHandler(metricsService, sessions, nil, logger.Nop()),
	)
	return r, srv
}

func serve(r *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newEngine(t)
	w := serve(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLoginAndQueryOverSSH(t *testing.T) {
	r, srv := newEngine(t)

	w := serve(r, http.MethodPost, "/api/auth/login", model.LoginRequest{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/api/auth/login", model.LoginRequest{Username: "alice", Password: "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Empty(t, srv.Commands(), "login must not run commands")

	w = serve(r, http.MethodGet, "/api/nodes/node03/metrics", nil, cookies...)
	require.Equal(t, http.StatusOK, w.Code)

	var m model.NodeMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, 8, m.CPUAllocated)
	assert.Equal(t, 32, m.CPUTotal)
	assert.Equal(t, 24, m.CPUFree)
	assert.InDelta(t, 7.91, m.CPULoad, 1e-9)
	assert.Equal(t, int64(256000), m.MemoryTotal)
	assert.Equal(t, 4, m.GPUTotal)
	assert.Equal(t, 2, m.GPUAllocated)
	assert.Equal(t, model.Slice{Allocated: 2, Free: 2}, m.Usage.GPU)

	w = serve(r, http.MethodGet, "/api/nodes/node01/metrics", nil, cookies...)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = serve(r, http.MethodGet, "/api/nodes/evil%3Bid/metrics", nil, cookies...)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, []string{"scontrol show node 'node03'", "scontrol show node 'node01'"}, srv.Commands())
}

func TestMetricsWithoutLoginNeverDials(t *testing.T) {
	r, srv := newEngine(t)

	w := serve(r, http.MethodGet, "/api/nodes/node03/metrics", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, srv.Logins())
}
