package metrics

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var indexPage = template.Must(template.New("index").Parse(`<html><body>
<h1>Track Search Metrics</h1>
<p><a href="/metrics">/metrics</a></p>
<ul>{{range .}}<li>{{.}}</li>{{end}}</ul>
</body></html>`))

// NewServeMux serves g at /metrics and, at /, an index listing the metric
// families currently registered.
func NewServeMux(g prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", Handler(g))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		families, err := g.Gather()
		if err != nil {
			slog.Warn("gathering metric families", "error", err)
		}
		names := make([]string, 0, len(families))
		for _, mf := range families {
			names = append(names, mf.GetName())
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexPage.Execute(w, names); err != nil {
			slog.Error("rendering metrics index", "error", err)
		}
	})
	return mux
}

// StartServer binds port and serves NewServeMux(g) in the background. The
// bind happens before it returns so a taken port fails service startup.
func StartServer(port int, g prometheus.Gatherer) (shutdown func(context.Context) error, err error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("binding metrics port %d: %w", port, err)
	}
	server := &http.Server{
		Handler:      NewServeMux(g),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("metrics server listening", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "error", err)
		}
	}()

	return server.Shutdown, nil
}
