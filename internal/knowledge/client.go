// Package knowledge stores and retrieves knowledge-base facts in a Qdrant
// collection, using OpenAI embeddings as the vector representation.
package knowledge

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/furoxr/discord-ai-bot/internal/knowledge")

// embeddingSize is the dimensionality of text-embedding-ada-002 vectors.
const embeddingSize = 1536

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds the Qdrant connection settings.
type Config struct {
	Host       string  `yaml:"host"`
	Port       int     `yaml:"port"`
	APIKey     string  `yaml:"api_key"`
	Collection string  `yaml:"collection"`
	MinScore   float32 `yaml:"min_score"`
}

// Defaults fills zero-valued fields.
func (c *Config) Defaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "knowledge"
	}
	if c.MinScore == 0 {
		c.MinScore = 0.8
	}
}

// Client wraps the Qdrant gRPC client with the bot's knowledge operations.
type Client struct {
	qdrant   *qdrant.Client
	embedder Embedder
	config   Config
}

// NewClient connects to Qdrant and returns a Client. The connection is
// lazy on the gRPC side; the first operation surfaces connectivity errors.
func NewClient(cfg Config, embedder Embedder) (*Client, error) {
	cfg.Defaults()
	qc, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge: connecting to qdrant: %w", err)
	}
	return &Client{qdrant: qc, embedder: embedder, config: cfg}, nil
}

// Collection returns the configured collection name.
func (c *Client) Collection() string {
	return c.config.Collection
}

// MinScore returns the similarity threshold below which hits are ignored.
func (c *Client) MinScore() float32 {
	return c.config.MinScore
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.qdrant.Close()
}

// ensureCollection creates the collection when it does not exist yet,
// sized for ada-002 embeddings with cosine distance.
func (c *Client) ensureCollection(ctx context.Context, collection string) error {
	exists, err := c.qdrant.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("knowledge: checking collection %s: %w", collection, err)
	}
	if exists {
		return nil
	}

	err = c.qdrant.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     embeddingSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("knowledge: creating collection %s: %w", collection, err)
	}
	return nil
}

// Upsert embeds the payload content and stores it as a new point. The
// point ID continues the sequence of points already in the collection.
func (c *Client) Upsert(ctx context.Context, collection string, p Payload) error {
	if err := c.ensureCollection(ctx, collection); err != nil {
		return err
	}

	vector, err := c.embedder.Embed(ctx, p.Content)
	if err != nil {
		return fmt.Errorf("knowledge: embedding content: %w", err)
	}

	count, err := c.qdrant.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("knowledge: counting points in %s: %w", collection, err)
	}

	_, err = c.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDNum(count + 1),
			Vectors: qdrant.NewVectors(vector...),
			Payload: p.values(),
		}},
	})
	if err != nil {
		return fmt.Errorf("knowledge: upserting into %s: %w", collection, err)
	}
	return nil
}

// Search embeds the question and returns the closest stored fact, or nil
// when the collection is empty.
func (c *Client) Search(ctx context.Context, collection, question string) (*Hit, error) {
	ctx, span := tracer.Start(ctx, "knowledge.search",
		trace.WithAttributes(attribute.String("qdrant.collection", collection)))
	defer span.End()

	vector, err := c.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("knowledge: embedding question: %w", err)
	}

	points, err := c.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge: querying %s: %w", collection, err)
	}
	if len(points) == 0 {
		return nil, nil
	}

	p, err := payloadFrom(points[0].Payload)
	if err != nil {
		return nil, err
	}
	return &Hit{Payload: p, Score: points[0].Score}, nil
}

// Lookup searches the configured collection and applies the similarity
// threshold: hits scoring below MinScore are treated as no hit at all.
func (c *Client) Lookup(ctx context.Context, question string) (*Hit, error) {
	hit, err := c.Search(ctx, c.config.Collection, question)
	if err != nil {
		return nil, err
	}
	if hit == nil || hit.Score < c.config.MinScore {
		return nil, nil
	}
	return hit, nil
}

// Clear removes the whole collection.
func (c *Client) Clear(ctx context.Context, collection string) error {
	if err := c.qdrant.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("knowledge: deleting collection %s: %w", collection, err)
	}
	return nil
}
