package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikbrunner/newtab/internal/model"
)

// DecodeCollection parses a persisted collection. Empty input yields an empty collection.
func DecodeCollection(data []byte) (model.Collection, error) {
	if len(data) == 0 {
		return model.Collection{}, nil
	}
	var items model.Collection
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode shortcuts: %w", err)
	}
	if items == nil {
		items = model.Collection{}
	}
	return items, nil
}

// EncodeCollection serializes a collection for storage.
func EncodeCollection(items model.Collection) ([]byte, error) {
	if items == nil {
		items = model.Collection{}
	}
	return json.Marshal(items)
}

// LoadCollection reads the shortcuts key. A missing key yields an empty collection.
func LoadCollection(ctx context.Context, s Store) (model.Collection, error) {
	data, err := s.Get(ctx, KeyShortcuts)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Collection{}, nil
		}
		return nil, err
	}
	return DecodeCollection(data)
}

// SaveCollection writes the whole collection under the shortcuts key.
func SaveCollection(ctx context.Context, s Store, items model.Collection) error {
	data, err := EncodeCollection(items)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyShortcuts, data)
}
