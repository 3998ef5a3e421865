package beecp

import (
	"encoding/json"
	"net/http"
)

// PoolStats is a point-in-time snapshot of a Pool's internals. It stands in
// for the JMX management beans a JVM connection pool would expose: Go has
// no JMX/RMI, so the nearest idiomatic equivalent is a plain struct exposed
// over net/http, the same shape net/http/pprof uses for runtime internals.
type PoolStats struct {
	Name             string `json:"name"`
	State            string `json:"state"`
	Total            int    `json:"total"`
	Idle             int    `json:"idle"`
	Using            int    `json:"using"`
	SemaphoreWaiters int    `json:"semaphoreWaiters"`
	TransferWaiters  int    `json:"transferWaiters"`
}

// Stats returns a snapshot of the pool's current state.
func (p *Pool) Stats() PoolStats {
	var idle, using int
	for _, conn := range p.conns.load() {
		switch conn.State() {
		case connIdle:
			idle++
		case connUsing:
			using++
		}
	}
	return PoolStats{
		Name:             p.cfg.Name,
		State:            p.currentState().String(),
		Total:            p.conns.len(),
		Idle:             idle,
		Using:            using,
		SemaphoreWaiters: p.sem.waiters(),
		TransferWaiters:  p.waiters.Len(),
	}
}

// RegisterManagement exposes this pool's stats and control surface on mux
// under /debug/pool/{name}: GET returns a PoolStats snapshot as JSON, POST
// to /debug/pool/{name}/clear forces a Clear(true).
func (p *Pool) RegisterManagement(mux *http.ServeMux, name string) {
	mux.HandleFunc("/debug/pool/"+name, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p.Stats())
	})
	mux.HandleFunc("/debug/pool/"+name+"/clear", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := p.Clear(r.Context(), true); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// registerDefaultManagement wires RegisterManagement against
// http.DefaultServeMux, used when Config.EnableManagement is set and the
// caller hasn't supplied their own mux.
func registerDefaultManagement(p *Pool) {
	p.RegisterManagement(http.DefaultServeMux, p.cfg.Name)
}
