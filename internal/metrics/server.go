package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/livp123/wowclp/internal/utils/logger"
)

// Server exposes a Prometheus gatherer over HTTP.
// Server 通过 HTTP 暴露 Prometheus 指标。
type Server struct {
	addr     string
	gatherer prometheus.Gatherer
	server   *http.Server
	listener net.Listener
	running  bool
	mu       sync.RWMutex // Protects running and listener / 保护 running 与 listener
}

// NewServer creates a metrics server for addr. A nil gatherer means the
// default registry.
// NewServer 创建指标服务器，gatherer 为 nil 时使用默认 registry。
func NewServer(addr string, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{addr: addr, gatherer: gatherer}
}

// IsRunning returns whether the server is serving (thread-safe).
// IsRunning 返回服务器是否正在运行（线程安全）。
func (m *Server) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Server) setRunning(running bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = running
}

// Addr returns the bound address once started, else the configured one.
func (m *Server) Addr() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listener != nil {
		return m.listener.Addr().String()
	}
	return m.addr
}

// Start binds the listener and serves /metrics in the background.
// Start 绑定监听地址并在后台提供 /metrics。
func (m *Server) Start(ctx context.Context) error {
	log := logger.Get(ctx)

	ln, err := net.Listen("tcp", m.addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	m.mu.Lock()
	m.listener = ln
	m.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	m.running = true
	srv := m.server
	m.mu.Unlock()

	go func() {
		log.Infof("[METRICS] Metrics server listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("[ERROR] Metrics server error: %v", err)
		}
		m.setRunning(false)
	}()

	return nil
}

// Stop shuts the server down.
// Stop 关闭指标服务器。
func (m *Server) Stop() error {
	m.mu.RLock()
	srv := m.server
	m.mu.RUnlock()

	m.setRunning(false)
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
