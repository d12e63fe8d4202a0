// middleware/instrument.go
package middleware

import (
	"bufio"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/LilVoxy/harga_pangan/metrics"
)

// statusRecorder запоминает код ответа
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack нужен для апгрейда соединения до WebSocket
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("ResponseWriter не поддерживает Hijack")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// routeName возвращает шаблон маршрута mux, чтобы метки не зависели от идентификаторов в пути
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Instrument считает запросы и их длительность по маршрутам и пишет строку в лог
func Instrument(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := routeName(r)
			elapsed := time.Since(startTime)
			m.Requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
			m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
			log.Printf("%s %s -> %d за %v [%s]", r.Method, r.URL.Path, rec.status, elapsed, GetRequestID(r.Context()))
		})
	}
}
