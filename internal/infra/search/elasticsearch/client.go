// Package elasticsearch implements the search index on Elasticsearch using
// one index per language named "<collection>_<language>".
package elasticsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
)

// Config holds the cluster connection settings.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	// MaxRetries is the transport retry count; negative disables retries.
	MaxRetries int
	// MaxResults caps the hits returned by a search.
	MaxResults int
}

// DefaultConfig returns settings for a local single-node cluster.
func DefaultConfig() Config {
	return Config{
		Addresses:  []string{"http://localhost:9200"},
		MaxRetries: 3,
		MaxResults: 100,
	}
}

// NewClient builds a go-elasticsearch client. Addresses without a scheme
// get "http://".
func NewClient(cfg Config) (*es.Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("elasticsearch: no addresses configured")
	}
	addresses := make([]string, 0, len(cfg.Addresses))
	for _, a := range cfg.Addresses {
		a = strings.TrimSpace(a)
		if !strings.HasPrefix(a, "http://") && !strings.HasPrefix(a, "https://") {
			a = "http://" + a
		}
		addresses = append(addresses, a)
	}

	clientConfig := es.Config{
		Addresses:    addresses,
		DisableRetry: cfg.MaxRetries < 0,
	}
	if cfg.MaxRetries > 0 {
		clientConfig.MaxRetries = cfg.MaxRetries
	}
	if cfg.Username != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return client, nil
}

// Ping verifies the cluster answers.
func Ping(ctx context.Context, client *es.Client) error {
	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch ping failed: %s", string(body))
	}
	return nil
}
