package view

import (
	"encoding/json"
	"fmt"

	"explorer/internal/domain"
)

// Detail renders a record as 4-space indented JSON in document order.
func Detail(rec *domain.Object) (string, error) {
	b, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return "", fmt.Errorf("render detail: %w", err)
	}
	return string(b), nil
}

// FindByKey returns the first record whose primary key stringifies to key.
func FindByKey(records []*domain.Object, primaryKey, key string) (*domain.Object, bool) {
	for _, rec := range records {
		if k, ok := domain.ResolveString(rec, primaryKey); ok && k == key {
			return rec, true
		}
	}
	return nil, false
}
