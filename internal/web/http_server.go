package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rook-computer/sigimage/internal/assets"
)

type HTTPServer struct {
	Addr string

	// StaticDir, when set to an existing directory, is served at "/" instead
	// of the embedded capture page. The API remains available under /api/v1/.
	StaticDir string

	DevMode bool
	Deps    APIV1Deps
	Logger  sysLogger

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	closed bool
}

func NewHTTPServer(cfg ServerConfig, deps APIV1Deps) *HTTPServer {
	return &HTTPServer{Addr: cfg.ListenAddr, StaticDir: cfg.StaticDir, DevMode: cfg.DevMode, Deps: deps, Logger: deps.Logger}
}

// Handler returns the full handler tree without listening.
func (s *HTTPServer) Handler() http.Handler {
	var handler http.Handler = NewDefaultMux(s.StaticDir, APIV1Config{Deps: s.Deps})
	if s.DevMode {
		handler = WithDevCORS(handler)
	}
	return handler
}

func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("web server already stopped")
	}
	if s.srv != nil {
		return nil
	}

	addr := s.Addr
	if addr == "" {
		addr = ":80"
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.srv = nil
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	s.logger().Infof("web", "listening on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	srv := s.srv
	go func() {
		err := srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		s.logger().Errorf("web", "serve: %v", err)
	}()

	return nil
}

// ListenAddr reports the bound address once started.
func (s *HTTPServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.srv
	ln := s.ln
	s.srv = nil
	s.ln = nil
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *HTTPServer) logger() sysLogger {
	if s.Logger == nil {
		return noopSysLogger{}
	}
	return s.Logger
}

// StaticUIHandler serves dir when it is an existing directory and the
// embedded capture page when dir is empty.
func StaticUIHandler(dir string) http.Handler {
	var fileServer http.Handler
	if dir == "" {
		fileServer = http.FileServer(http.FS(assets.WebUI))
	} else if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return http.NotFoundHandler()
	} else {
		fileServer = http.FileServer(http.Dir(dir))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Clean path to avoid parent directory traversal; keep the trailing
		// slash so directory redirects settle.
		cleaned := path.Clean("/" + r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/") && cleaned != "/" {
			cleaned += "/"
		}
		r.URL.Path = cleaned
		fileServer.ServeHTTP(w, r)
	})
}
