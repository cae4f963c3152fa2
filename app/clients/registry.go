package clients

import (
	"log"
	"sync"

	"GoForgeAI/app/loop"
)

type Registry struct {
	mu      sync.RWMutex
	clients []Interface
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make([]Interface, 0),
	}
}

func (r *Registry) Register(client Interface) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients = append(r.clients, client)
}

// NotifyAll fans the terminal result out to every registered connector. A
// failing connector is logged and skipped; notification never affects the
// run outcome.
func (r *Registry) NotifyAll(result *loop.Result) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, client := range r.clients {
		if err := client.Notify(result); err != nil {
			log.Printf("⚠️ Error notifying client: %v", err)
		}
	}
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, client := range r.clients {
		if closer, ok := client.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				log.Printf("⚠️ Error closing client: %v", err)
			}
		}
	}
	r.clients = make([]Interface, 0)
}
