package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// HNSW build parameters.
	defaultEFConstruction = 200
	defaultM              = 16

	// Number of nearest neighbors returned per query.
	referenceTopK = 3

	// Field names in the Redis hash.
	fieldVector      = "vector"
	fieldStatus      = "status"
	fieldDescription = "description"
	fieldImagePath   = "image_path"
	fieldCreatedAt   = "created_at"
	fieldScore       = "score"
)

// RedisStore implements ReferenceStore on Redis with RediSearch vector
// search. The go-redis client is pool-backed, so one store is shared by
// all concurrent requests.
type RedisStore struct {
	client         *redis.Client
	embeddingSvc   *EmbeddingService
	config         StoreConfig
	indexCreated   bool
	mu             sync.Mutex
	efConstruction int
	m              int
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	PoolSize       int
	IndexName      string
	KeyPrefix      string
	VectorDim      int
	EFConstruction int
	M              int
}

// NewRedisStore connects to Redis and opens or creates the reference
// index. This is a one-time boot operation; per-request calls only read
// and append.
func NewRedisStore(ctx context.Context, embeddingSvc *EmbeddingService, cfg RedisConfig) (*RedisStore, error) {
	if embeddingSvc == nil {
		return nil, fmt.Errorf("embedding service is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ef := cfg.EFConstruction
	if ef <= 0 {
		ef = defaultEFConstruction
	}
	m := cfg.M
	if m <= 0 {
		m = defaultM
	}

	dim := cfg.VectorDim
	if dim <= 0 {
		dim = embeddingSvc.Dimension()
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = DefaultStoreConfig().KeyPrefix
	}

	store := &RedisStore{
		client:       client,
		embeddingSvc: embeddingSvc,
		config: StoreConfig{
			EmbeddingDim: dim,
			IndexName:    cfg.IndexName,
			KeyPrefix:    keyPrefix,
		},
		efConstruction: ef,
		m:              m,
	}

	if err := store.ensureIndex(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}

	return store, nil
}

// ensureIndex creates the HNSW vector index if it doesn't exist.
func (s *RedisStore) ensureIndex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	indexName := s.config.IndexName
	_, err := s.client.Do(ctx, "FT.INFO", indexName).Result()
	if err == nil {
		// Index exists; reuse it.
		s.indexCreated = true
		return nil
	}

	// FT.CREATE bims-examples
	//   ON HASH PREFIX 1 "ref:"
	//   SCHEMA vector VECTOR HNSW 10 TYPE FLOAT32 DIM 512 DISTANCE_METRIC COSINE
	//              EF_CONSTRUCTION 200 M 16
	//          status TAG
	//          description TEXT
	//          image_path TEXT
	//          created_at NUMERIC
	_, err = s.client.Do(ctx, "FT.CREATE", indexName,
		"ON", "HASH",
		"PREFIX", "1", s.config.KeyPrefix,
		"SCHEMA",
		fieldVector, "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(s.config.EmbeddingDim),
		"DISTANCE_METRIC", "COSINE",
		"EF_CONSTRUCTION", strconv.Itoa(s.efConstruction),
		"M", strconv.Itoa(s.m),
		fieldStatus, "TAG",
		fieldDescription, "TEXT",
		fieldImagePath, "TEXT",
		fieldCreatedAt, "NUMERIC",
	).Result()

	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	s.indexCreated = true
	return nil
}

// Add embeds the image and stores it as a reference record. Records are
// never mutated after creation.
func (s *RedisStore) Add(ctx context.Context, imagePath, status, description string) (string, error) {
	vec, err := s.embeddingSvc.EmbedInput(ctx, ImageRef(imagePath))
	if err != nil {
		return "", fmt.Errorf("failed to embed reference image: %w", err)
	}

	id := uuid.NewString()
	key := s.config.KeyPrefix + id

	err = s.client.HSet(ctx, key,
		fieldVector, encodeVector(vec),
		fieldStatus, status,
		fieldDescription, description,
		fieldImagePath, imagePath,
		fieldCreatedAt, time.Now().Unix(),
	).Err()
	if err != nil {
		return "", fmt.Errorf("failed to store reference record: %w", err)
	}

	return id, nil
}

// Query embeds the query image and runs a KNN search for the closest
// reference records.
func (s *RedisStore) Query(ctx context.Context, imagePath string) ([]Match, error) {
	queryVec, err := s.embeddingSvc.EmbedInput(ctx, ImageRef(imagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query image: %w", err)
	}

	// FT.SEARCH bims-examples "*=>[KNN 3 @vector $query_vector AS score]"
	//   PARAMS 2 query_vector "<bytes>"
	//   RETURN 3 status description score
	//   SORTBY score
	//   LIMIT 0 3
	//   DIALECT 2
	queryStr := fmt.Sprintf("*=>[KNN %d @%s $query_vector AS %s]", referenceTopK, fieldVector, fieldScore)

	result, err := s.client.Do(ctx, "FT.SEARCH", s.config.IndexName, queryStr,
		"PARAMS", "2", "query_vector", encodeVector(queryVec),
		"RETURN", "3", fieldStatus, fieldDescription, fieldScore,
		"SORTBY", fieldScore,
		"LIMIT", "0", strconv.Itoa(referenceTopK),
		"DIALECT", "2",
	).Result()
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	matches, err := parseSearchResults(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	return matches, nil
}

// Count returns the number of records in the index.
func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	info, err := s.client.Do(ctx, "FT.INFO", s.config.IndexName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get index info: %w", err)
	}

	values, ok := info.([]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected info format")
	}

	for i := 0; i < len(values)-1; i += 2 {
		if key, ok := values[i].(string); ok && key == "num_docs" {
			switch count := values[i+1].(type) {
			case int64:
				return count, nil
			case string:
				n, err := strconv.ParseInt(count, 10, 64)
				if err != nil {
					return 0, fmt.Errorf("unexpected num_docs value: %w", err)
				}
				return n, nil
			}
		}
	}

	return 0, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// encodeVector encodes a float32 vector as the little-endian byte blob
// RediSearch expects for FLOAT32 vector fields.
func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// parseSearchResults parses the FT.SEARCH reply. The reply is a flat list:
// a count followed by (id, fields) pairs, with fields as their own flat
// key/value list.
func parseSearchResults(result interface{}) ([]Match, error) {
	values, ok := result.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected result format")
	}

	matches := []Match{}
	for i := 1; i < len(values); i += 2 {
		if i+1 >= len(values) {
			break
		}

		fields, ok := values[i+1].([]interface{})
		if !ok {
			continue
		}

		matches = append(matches, parseMatchFields(fields))
	}

	return matches, nil
}

// parseMatchFields extracts one match from a flat key/value field list.
func parseMatchFields(fields []interface{}) Match {
	var match Match

	for i := 0; i+1 < len(fields); i += 2 {
		name, ok := fields[i].(string)
		if !ok {
			continue
		}
		value, ok := fields[i+1].(string)
		if !ok {
			continue
		}

		switch name {
		case fieldStatus:
			match.Status = value
		case fieldDescription:
			match.Description = value
		case fieldScore:
			// RediSearch reports cosine distance; flip it into a
			// similarity score.
			if dist, err := strconv.ParseFloat(value, 32); err == nil {
				match.Score = 1 - float32(dist)
			}
		}
	}

	return match
}
