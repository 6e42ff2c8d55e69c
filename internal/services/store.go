package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fairwaylabs/caddie/pkg/database"
)

// caddiebookKey is the fixed application key the whole dataset lives under.
const caddiebookKey = "caddie:book"

// ErrDocumentNotFound is returned by a DocumentStore when no document
// exists under the requested key.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore is the persistence collaborator: whole-document reads and
// writes keyed by string, no partial updates, no transactions.
type DocumentStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
}

// RedisDocumentStore keeps each document as a JSON string under its key.
type RedisDocumentStore struct {
	client *redis.Client
}

func NewRedisDocumentStore(client *redis.Client) *RedisDocumentStore {
	return &RedisDocumentStore{client: client}
}

func (s *RedisDocumentStore) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to read document: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return nil
}

func (s *RedisDocumentStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}

// Document is the single-table relational shape of a stored document.
type Document struct {
	Key       string         `gorm:"primaryKey"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (Document) TableName() string {
	return "documents"
}

// GormDocumentStore keeps documents in a relational documents table, one
// row per key with a JSON value column.
type GormDocumentStore struct {
	db *database.DB
}

func NewGormDocumentStore(db *database.DB) (*GormDocumentStore, error) {
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return &GormDocumentStore{db: db}, nil
}

func (s *GormDocumentStore) Get(ctx context.Context, key string, dest interface{}) error {
	var doc Document
	if err := s.db.WithContext(ctx).First(&doc, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to read document: %w", err)
	}

	if err := json.Unmarshal(doc.Value, dest); err != nil {
		return fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return nil
}

func (s *GormDocumentStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	doc := Document{Key: key, Value: datatypes.JSON(data), UpdatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Save(&doc).Error; err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}
