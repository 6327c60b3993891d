package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/consul/api"
)

// ConsulStore keeps documents in the HashiCorp Consul KV store.
//
// Every document is one KV entry below the configured prefix. Consul KV has
// a 512KB limit per value, which is plenty for metadata documents.
type ConsulStore struct {
	mu     sync.RWMutex
	client *api.Client
	kv     *api.KV

	config *ConsulConfig
}

// ConsulConfig contains configuration options for the Consul store
type ConsulConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for all keys in Consul KV (default: "coda/files/")
	Prefix string
}

func NewConsulStore(config *ConsulConfig) (*ConsulStore, error) {
	if config == nil {
		config = &ConsulConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "coda/files/"
	}
	if !strings.HasSuffix(config.Prefix, "/") {
		config.Prefix += "/"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulStore{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

func (cs *ConsulStore) buildKey(path string) string {
	return cs.config.Prefix + documentKey(path)
}

func (*ConsulStore) Name() string {
	return "consul"
}

func (cs *ConsulStore) Connect(ctx context.Context) error {
	return cs.Health(ctx)
}

// Close is a no-op, the Consul client is stateless
func (cs *ConsulStore) Close() error {
	return nil
}

func (cs *ConsulStore) Migrate(ctx context.Context) error {
	return nil
}

func (cs *ConsulStore) Health(ctx context.Context) error {
	leader, err := cs.client.Status().Leader()
	if err != nil {
		return err
	}
	if leader == "" {
		return fmt.Errorf("consul cluster at %s has no leader", cs.config.Address)
	}
	return nil
}

func (cs *ConsulStore) Insert(ctx context.Context, doc *Document) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	stored := doc.Clone()
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	data, err := encodeDocument(stored)
	if err != nil {
		return err
	}

	// A CAS with index 0 only succeeds if the key does not exist yet
	pair := &api.KVPair{
		Key:   cs.buildKey(doc.Path),
		Value: data,
	}
	ok, _, err := cs.kv.CAS(pair, writeOptions(ctx))
	if err != nil {
		return err
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (cs *ConsulStore) Update(ctx context.Context, doc *Document) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	key := cs.buildKey(doc.Path)
	pair, _, err := cs.kv.Get(key, queryOptions(ctx))
	if err != nil {
		return err
	}
	if pair == nil {
		return ErrNotFound
	}

	existing, err := decodeDocument(pair.Value)
	if err != nil {
		return err
	}

	stored := doc.Clone()
	stored.ID = existing.ID
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()

	data, err := encodeDocument(stored)
	if err != nil {
		return err
	}

	pair.Value = data
	_, err = cs.kv.Put(pair, writeOptions(ctx))
	return err
}

func (cs *ConsulStore) Delete(ctx context.Context, query Query) (int, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	docs, err := cs.scan(ctx, query)
	if err != nil {
		return 0, err
	}

	for _, doc := range docs {
		if _, err := cs.kv.Delete(cs.buildKey(doc.Path), writeOptions(ctx)); err != nil {
			return 0, err
		}
	}
	return len(docs), nil
}

func (cs *ConsulStore) Find(ctx context.Context, query Query) ([]*Document, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return cs.scan(ctx, query)
}

func (cs *ConsulStore) FindOne(ctx context.Context, query Query) (*Document, error) {
	docs, err := cs.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	return first(docs)
}

func (cs *ConsulStore) scan(ctx context.Context, query Query) ([]*Document, error) {
	var pairs api.KVPairs

	if path, ok := query.Path(); ok {
		pair, _, err := cs.kv.Get(cs.buildKey(path), queryOptions(ctx))
		if err != nil {
			return nil, err
		}
		if pair != nil {
			pairs = append(pairs, pair)
		}
	} else {
		list, _, err := cs.kv.List(cs.config.Prefix, queryOptions(ctx))
		if err != nil {
			return nil, err
		}
		pairs = list
	}

	docs := make([]*Document, 0, len(pairs))
	for _, pair := range pairs {
		doc, err := decodeDocument(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("consul key '%s': %w", pair.Key, err)
		}
		docs = append(docs, doc)
	}

	return filterDocuments(docs, query), nil
}

func queryOptions(ctx context.Context) *api.QueryOptions {
	return (&api.QueryOptions{}).WithContext(ctx)
}

func writeOptions(ctx context.Context) *api.WriteOptions {
	return (&api.WriteOptions{}).WithContext(ctx)
}
