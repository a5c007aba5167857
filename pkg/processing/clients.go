package processing

import (
	"context"
	"fmt"
	"sync"

	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
)

// ClientFactory creates the API caller of an environment.
type ClientFactory func(ctx context.Context, env api.Environment) (acquiring.Caller, error)

// Clients caches one caller per environment so the OAuth2 token is shared by all chains.
type Clients struct {
	factory ClientFactory

	mu    sync.Mutex
	cache map[string]acquiring.Caller
}

// NewClients returns a cache backed by factory, or by acquiring.NewClient when factory is nil.
func NewClients(factory ClientFactory) *Clients {
	if factory == nil {
		factory = func(ctx context.Context, env api.Environment) (acquiring.Caller, error) {
			if env.EndpointHost == "" {
				return nil, fmt.Errorf("environment %q has no endpoint_host", env.Name)
			}
			return acquiring.NewClient(ctx, env), nil
		}
	}
	return &Clients{factory: factory, cache: make(map[string]acquiring.Caller)}
}

func (c *Clients) Get(ctx context.Context, env api.Environment) (acquiring.Caller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller, ok := c.cache[env.Name]; ok {
		return caller, nil
	}
	caller, err := c.factory(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("creating client for environment %q: %w", env.Name, err)
	}
	c.cache[env.Name] = caller
	return caller, nil
}
