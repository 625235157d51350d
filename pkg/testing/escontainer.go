package testing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/testcontainers/testcontainers-go"
	tces "github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ESImage matches the major version of the go-elasticsearch client.
const ESImage = "docker.elastic.co/elasticsearch/elasticsearch:8.19.0"

type ESContainer struct {
	Container testcontainers.Container
	Address   string
}

type esOptions struct {
	image   string
	startup time.Duration
}

type ESOption func(*esOptions)

func WithESImage(image string) ESOption {
	return func(o *esOptions) {
		o.image = image
	}
}

func WithESStartupTimeout(d time.Duration) ESOption {
	return func(o *esOptions) {
		o.startup = d
	}
}

// NewESContainer starts a single-node cluster without security and waits
// until it reports at least yellow health. The container is terminated when
// the test ends.
func NewESContainer(ctx context.Context, tb testing.TB, opts ...ESOption) *ESContainer {
	tb.Helper()

	o := esOptions{image: ESImage, startup: 90 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	container, err := tces.Run(ctx,
		o.image,
		tces.WithPassword(""),
		testcontainers.WithEnv(map[string]string{
			"xpack.security.enabled": "false",
			"discovery.type":         "single-node",
			"ES_JAVA_OPTS":           "-Xms512m -Xmx512m",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_cluster/health?wait_for_status=yellow").
				WithPort("9200").
				WithStartupTimeout(o.startup),
		),
	)
	if err != nil {
		tb.Fatalf("start elasticsearch container: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminate elasticsearch container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		tb.Fatalf("elasticsearch host: %v", err)
	}
	port, err := container.MappedPort(ctx, "9200")
	if err != nil {
		tb.Fatalf("elasticsearch port: %v", err)
	}

	return &ESContainer{
		Container: container,
		Address:   fmt.Sprintf("http://%s:%s", host, port.Port()),
	}
}

// TypedClient returns a client for assertions made outside the code under test.
func (c *ESContainer) TypedClient(tb testing.TB) *elasticsearch.TypedClient {
	tb.Helper()

	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{Addresses: []string{c.Address}})
	if err != nil {
		tb.Fatalf("elasticsearch client: %v", err)
	}
	return client
}

// CountDocs refreshes index and returns its document count.
func (c *ESContainer) CountDocs(ctx context.Context, tb testing.TB, index string) int64 {
	tb.Helper()

	client := c.TypedClient(tb)
	if _, err := client.Indices.Refresh().Index(index).Do(ctx); err != nil {
		tb.Fatalf("refresh %s: %v", index, err)
	}
	res, err := client.Count().Index(index).Do(ctx)
	if err != nil {
		tb.Fatalf("count %s: %v", index, err)
	}
	return res.Count
}
