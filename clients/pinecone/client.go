package pinecone

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"chatmirror/clients"
	"chatmirror/config"
	"chatmirror/core"
)

// PineconeClient implements clients.VectorStoreClient over the Pinecone
// serverless API.
type PineconeClient struct {
	client *pinecone.Client
	cloud  string
	region string
}

// NewPineconeClient creates a vector store client from the Pinecone config
func NewPineconeClient(cfg config.PineconeConfig) (*PineconeClient, error) {
	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	return &PineconeClient{
		client: client,
		cloud:  cfg.Cloud,
		region: cfg.Region,
	}, nil
}

func (c *PineconeClient) IndexExists(ctx context.Context, name string) (bool, error) {
	indexes, err := c.client.ListIndexes(ctx)
	if err != nil {
		return false, core.NewPipelineError(
			core.ErrorKindTransient,
			fmt.Errorf("failed to list indexes: %w", err),
		)
	}

	for _, idx := range indexes {
		if idx.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (c *PineconeClient) CreateIndex(ctx context.Context, name string, dimension int, metric string) error {
	dim := int32(dimension)
	indexMetric := pinecone.IndexMetric(metric)

	_, err := c.client.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:      name,
		Dimension: &dim,
		Metric:    &indexMetric,
		Cloud:     pinecone.Cloud(c.cloud),
		Region:    c.region,
	})
	if err != nil {
		return core.NewPipelineError(
			core.ErrorKindProvisioningConflict,
			fmt.Errorf("failed to create index %s: %w", name, err),
		)
	}
	return nil
}

func (c *PineconeClient) Upsert(ctx context.Context, indexName string, items []clients.VectorItem) (int, error) {
	idx, err := c.client.DescribeIndex(ctx, indexName)
	if err != nil {
		return 0, core.NewPipelineError(
			core.ErrorKindTransient,
			fmt.Errorf("failed to describe index %s: %w", indexName, err),
		)
	}

	conn, err := c.client.Index(pinecone.NewIndexConnParams{Host: idx.Host})
	if err != nil {
		return 0, core.NewPipelineError(
			core.ErrorKindTransient,
			fmt.Errorf("failed to connect to index %s: %w", indexName, err),
		)
	}
	defer conn.Close()

	vectors := make([]*pinecone.Vector, 0, len(items))
	for _, item := range items {
		metadata, err := structpb.NewStruct(item.Metadata)
		if err != nil {
			return 0, core.NewPipelineError(
				core.ErrorKindDataInvalid,
				fmt.Errorf("failed to build metadata for vector %s: %w", item.ID, err),
			)
		}
		values := item.Values
		vectors = append(vectors, &pinecone.Vector{
			Id:       item.ID,
			Values:   &values,
			Metadata: metadata,
		})
	}

	count, err := conn.UpsertVectors(ctx, vectors)
	if err != nil {
		return 0, core.NewPipelineError(
			core.ErrorKindTransient,
			fmt.Errorf("failed to upsert %d vectors into %s: %w", len(vectors), indexName, err),
		)
	}
	return int(count), nil
}
