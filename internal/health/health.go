package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger reports whether a backing dependency is reachable. Both
// pgxpool.Pool and wrapped NSQ producers satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Status struct {
	OK         bool   `json:"ok"`
	Message    string `json:"message,omitempty"`
	Dependency bool   `json:"dependency,omitempty"`
}

// HTTPHandler returns an HTTP handler that reports the health status of the service
func HTTPHandler(dep Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := Status{OK: true, Message: "ok", Dependency: true}
		w.Header().Set("Content-Type", "application/json")

		if dep != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
			defer cancel()
			if err := dep.Ping(ctx); err != nil {
				st.OK = false
				st.Message = "dependency ping failed"
				st.Dependency = false
				w.WriteHeader(http.StatusServiceUnavailable)
			}
		}
		_ = json.NewEncoder(w).Encode(st)
	}
}
