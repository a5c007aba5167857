package processing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
)

type nopCaller struct{ env string }

func (nopCaller) Do(context.Context, string, string, any) (*acquiring.Response, error) {
	return nil, nil
}

func TestClients_CachesPerEnvironment(t *testing.T) {
	var mu sync.Mutex
	created := map[string]int{}
	clients := NewClients(func(_ context.Context, env api.Environment) (acquiring.Caller, error) {
		mu.Lock()
		defer mu.Unlock()
		created[env.Name]++
		return nopCaller{env: env.Name}, nil
	})

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := "dev"
			if i%2 == 0 {
				name = "test"
			}
			if _, err := clients.Get(context.Background(), api.Environment{Name: name}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if created["dev"] != 1 || created["test"] != 1 {
		t.Fatalf("expected one client per environment, got %v", created)
	}
	c, _ := clients.Get(context.Background(), api.Environment{Name: "dev"})
	if c.(nopCaller).env != "dev" {
		t.Fatalf("unexpected cached client %+v", c)
	}
}

func TestClients_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	clients := NewClients(func(context.Context, api.Environment) (acquiring.Caller, error) {
		return nil, boom
	})
	if _, err := clients.Get(context.Background(), api.Environment{Name: "dev"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped factory error, got %v", err)
	}
}

func TestClients_DefaultFactoryRequiresHost(t *testing.T) {
	clients := NewClients(nil)
	if _, err := clients.Get(context.Background(), api.Environment{Name: "dev"}); err == nil {
		t.Fatal("expected error for an environment without endpoint_host")
	}
	c, err := clients.Get(context.Background(), api.Environment{Name: "prod", EndpointHost: "http://localhost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*acquiring.Client); !ok {
		t.Fatalf("expected *acquiring.Client, got %T", c)
	}
}
