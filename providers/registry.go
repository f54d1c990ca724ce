package providers

import (
	"sync"

	"content-agent/apperr"

	"github.com/morikuni/failure/v2"
	"go.uber.org/zap"
)

// Factory erzeugt den Client einer Variante. Fehlen die Zugangsdaten, liefert sie einen
// Fehler mit Code apperr.ProviderUnavailable.
type Factory func() (Provider, error)

// Registry hält pro Variante genau einen Client. Clients werden erst bei der ersten
// Anfrage erzeugt und danach für die Lebensdauer des Prozesses wiederverwendet.
type Registry struct {
	logger    *zap.Logger
	factories map[Variant]Factory

	mu      sync.Mutex
	clients map[Variant]Provider
}

// NewRegistry erstellt eine Registry für die übergebenen Fabriken.
func NewRegistry(logger *zap.Logger, factories map[Variant]Factory) *Registry {
	return &Registry{
		logger:    logger,
		factories: factories,
		clients:   make(map[Variant]Provider),
	}
}

// Provider liefert den Client der Variante und erzeugt ihn bei Bedarf.
func (r *Registry) Provider(v Variant) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.clients[v]; ok {
		return p, nil
	}

	factory, ok := r.factories[v]
	if !ok {
		return nil, failure.New(apperr.ProviderUnavailable,
			failure.Message("AI provider is not available"),
			failure.Context{"provider": v.String()},
		)
	}

	p, err := factory()
	if err != nil {
		r.logger.Warn("Provider client could not be created", zap.String("provider", v.String()), zap.Error(err))
		return nil, err
	}

	r.logger.Info("Provider client created", zap.String("provider", v.String()))
	r.clients[v] = p
	return p, nil
}
