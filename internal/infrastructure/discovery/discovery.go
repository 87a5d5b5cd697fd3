package discovery

import (
	"context"
	"fmt"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/config"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const defaultLeaseTTL = 30

// Registrar announces this instance under an etcd lease for as long as the process lives.
type Registrar struct {
	client *clientv3.Client
	prefix string
	ttl    int64

	key   string
	lease clientv3.LeaseID
	stop  context.CancelFunc
}

type Instance struct {
	Name string
	Host string
	Port int
}

func (i Instance) Addr() string {
	return fmt.Sprintf("%s:%d", i.Host, i.Port)
}

func NewRegistrar(cfg config.EtcdConfig) (*Registrar, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	ttl := cfg.LeaseTTL
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &Registrar{client: cli, prefix: cfg.Prefix, ttl: ttl}, nil
}

// Key is the etcd key an instance is registered under.
func Key(prefix string, in Instance) string {
	return fmt.Sprintf("%s%s/%s", prefix, in.Name, in.Addr())
}

func (r *Registrar) Register(ctx context.Context, in Instance) error {
	lease, err := r.client.Grant(ctx, r.ttl)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	key := Key(r.prefix, in)
	if _, err := r.client.Put(ctx, key, in.Addr(), clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	// The keep-alive outlives the request context.
	kaCtx, stop := context.WithCancel(context.Background())
	ch, err := r.client.KeepAlive(kaCtx, lease.ID)
	if err != nil {
		stop()
		return fmt.Errorf("failed to keep alive: %w", err)
	}
	go func() {
		for range ch {
		}
	}()

	r.key, r.lease, r.stop = key, lease.ID, stop
	return nil
}

func (r *Registrar) Deregister(ctx context.Context) error {
	if r.stop != nil {
		r.stop()
	}
	if r.key == "" {
		return nil
	}
	if _, err := r.client.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	if _, err := r.client.Revoke(ctx, r.lease); err != nil {
		return fmt.Errorf("failed to revoke lease: %w", err)
	}
	r.key = ""
	return nil
}

func (r *Registrar) Close() error {
	return r.client.Close()
}
