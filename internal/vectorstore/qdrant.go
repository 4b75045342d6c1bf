package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"proposal-ai/internal/contextutil"
	"proposal-ai/internal/taxonomy"
)

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) is derived from the HTTP port.
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{client: client}, nil
}

// Upsert inserts or updates points in the collection.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vec...),
			Payload: qdrant.NewValueMap(payloadToMap(point.Payload)),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search performs a similarity search restricted by the filter. Organization
// scoping is applied unconditionally; an empty organization id is rejected
// rather than widened to all tenants.
func (s *QdrantStore) Search(ctx context.Context, collection string, query []float32, k int, filter Filter) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	if filter.OrganizationID == "" {
		return nil, fmt.Errorf("filter organization id is required")
	}

	limit := uint64(k)
	queryReq := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		Filter:         buildQdrantFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	scoredPoints, err := s.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]SearchResult, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		id := ""
		if point.Id != nil {
			id = point.Id.GetUuid()
		}

		payload := Payload{}
		if point.Payload != nil {
			payload = payloadFromMap(convertPayloadToMap(point.Payload))
		}

		results = append(results, SearchResult{
			ID:      id,
			Score:   point.Score,
			Payload: payload,
		})
	}

	logger.InfoContext(ctx, "search completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// DeleteDocument removes all points of one document within one organization.
func (s *QdrantStore) DeleteDocument(ctx context.Context, collection, organizationID, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if organizationID == "" || documentID == "" {
		return fmt.Errorf("organization id and document id are required")
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("organization_id", organizationID),
				qdrant.NewMatch("document_id", documentID),
			},
		}),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete document points", "collection", collection, "document_id", documentID, "error", err)
		return fmt.Errorf("failed to delete document points: %w", err)
	}

	logger.InfoContext(ctx, "deleted document points", "collection", collection, "document_id", documentID)
	return nil
}

// CollectionExists checks if a collection exists. Used as the availability
// probe at startup.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// EnsureCollection ensures a collection exists with the specified vector
// size, creating it when missing and validating the size when present.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	config := info.Config
	if config == nil || config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}
	vectorsConfig := config.Params.GetVectorsConfig()
	if vectorsConfig == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}
	params := vectorsConfig.GetParams()
	if params == nil {
		return fmt.Errorf("collection vector params are invalid")
	}
	if int(params.Size) != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, params.Size)
	}

	logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return nil
}

// buildQdrantFilter translates the typed filter into Qdrant conditions:
// equality on organization id, keyword-set membership (OR) per populated
// dimension, all conditions ANDed.
func buildQdrantFilter(filter Filter) *qdrant.Filter {
	must := []*qdrant.Condition{
		qdrant.NewMatch("organization_id", filter.OrganizationID),
	}

	if len(filter.DocumentIDs) > 0 {
		must = append(must, qdrant.NewMatchKeywords("document_id", filter.DocumentIDs...))
	}
	if kws := toKeywords(filter.DocumentTypes); len(kws) > 0 {
		must = append(must, qdrant.NewMatchKeywords("document_type", kws...))
	}
	if kws := toKeywords(filter.IndustryTags); len(kws) > 0 {
		must = append(must, qdrant.NewMatchKeywords("industry_tags", kws...))
	}
	if kws := toKeywords(filter.CapabilityTags); len(kws) > 0 {
		must = append(must, qdrant.NewMatchKeywords("capability_tags", kws...))
	}
	if kws := toKeywords(filter.ProjectSizes); len(kws) > 0 {
		must = append(must, qdrant.NewMatchKeywords("project_size", kws...))
	}
	if kws := toKeywords(filter.GeographicScopes); len(kws) > 0 {
		must = append(must, qdrant.NewMatchKeywords("geographic_scope", kws...))
	}
	if kws := toKeywords(filter.ConfidenceLevels); len(kws) > 0 {
		must = append(must, qdrant.NewMatchKeywords("confidence_level", kws...))
	}

	return &qdrant.Filter{Must: must}
}

func toKeywords[T ~string](values []T) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// payloadToMap flattens the typed payload into the stored representation.
func payloadToMap(p Payload) map[string]any {
	m := map[string]any{
		"organization_id": p.OrganizationID,
		"document_id":     p.DocumentID,
		"filename":        p.Filename,
		"page_number":     p.PageNumber,
		"chunk_index":     p.ChunkIndex,
		"text":            p.Text,
		"document_type":   string(p.Tags.DocumentType),
	}
	if kws := toKeywords(p.Tags.IndustryTags); len(kws) > 0 {
		m["industry_tags"] = toAnySlice(kws)
	}
	if kws := toKeywords(p.Tags.CapabilityTags); len(kws) > 0 {
		m["capability_tags"] = toAnySlice(kws)
	}
	if p.Tags.ProjectSize != "" {
		m["project_size"] = string(p.Tags.ProjectSize)
	}
	if p.Tags.GeographicScope != "" {
		m["geographic_scope"] = string(p.Tags.GeographicScope)
	}
	if p.Tags.ConfidenceLevel != "" {
		m["confidence_level"] = string(p.Tags.ConfidenceLevel)
	}
	if len(p.Tags.CustomTags) > 0 {
		m["custom_tags"] = toAnySlice(p.Tags.CustomTags)
	}
	if len(p.Tags.Keywords) > 0 {
		m["keywords"] = toAnySlice(p.Tags.Keywords)
	}
	return m
}

// payloadFromMap rebuilds the typed payload from a stored representation.
// Unknown or mistyped entries are ignored rather than failing the search.
func payloadFromMap(m map[string]any) Payload {
	p := Payload{}
	p.OrganizationID, _ = m["organization_id"].(string)
	p.DocumentID, _ = m["document_id"].(string)
	p.Filename, _ = m["filename"].(string)
	p.PageNumber = asInt(m["page_number"])
	p.ChunkIndex = asInt(m["chunk_index"])
	p.Text, _ = m["text"].(string)

	if s, ok := m["document_type"].(string); ok {
		p.Tags.DocumentType = taxonomy.DocumentType(s)
	}
	for _, s := range asStrings(m["industry_tags"]) {
		p.Tags.IndustryTags = append(p.Tags.IndustryTags, taxonomy.IndustryTag(s))
	}
	for _, s := range asStrings(m["capability_tags"]) {
		p.Tags.CapabilityTags = append(p.Tags.CapabilityTags, taxonomy.CapabilityTag(s))
	}
	if s, ok := m["project_size"].(string); ok {
		p.Tags.ProjectSize = taxonomy.ProjectSize(s)
	}
	if s, ok := m["geographic_scope"].(string); ok {
		p.Tags.GeographicScope = taxonomy.GeographicScope(s)
	}
	if s, ok := m["confidence_level"].(string); ok {
		p.Tags.ConfidenceLevel = taxonomy.ConfidenceLevel(s)
	}
	p.Tags.CustomTags = asStrings(m["custom_tags"])
	p.Tags.Keywords = asStrings(m["keywords"])
	return p
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// convertPayloadToMap converts a Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to a Go any value.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
