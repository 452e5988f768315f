package favorites

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"real-estate-marketplace/internal/contracts"
	"real-estate-marketplace/internal/core/domain"
)

// EncodeDocument сериализует набор в формат хранилища. ID сортируются,
// чтобы одинаковые наборы давали одинаковые документы.
func EncodeDocument(ids map[string]struct{}, updatedAt time.Time) ([]byte, error) {
	doc := domain.FavoritesDocument{
		Version:   domain.FavoritesDocumentVersion,
		Favorites: sortedIDs(ids),
		UpdatedAt: updatedAt.UTC(),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal favorites document: %w", err)
	}
	return body, nil
}

// DecodeDocument разбирает значение из хранилища. Помимо текущего формата
// принимается старый формат - голый JSON-массив ID.
func DecodeDocument(raw []byte) (map[string]struct{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return make(map[string]struct{}), nil
	}

	if trimmed[0] == '[' {
		var legacy []string
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return nil, fmt.Errorf("failed to unmarshal legacy favorites array: %w", err)
		}
		return toSet(legacy), nil
	}

	if err := contracts.ValidateDocument(contracts.FavoritesSetDocument, contracts.CurrentSchemaVersion, trimmed); err != nil {
		return nil, fmt.Errorf("invalid favorites document: %w", err)
	}

	var doc domain.FavoritesDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal favorites document: %w", err)
	}
	if doc.Version > domain.FavoritesDocumentVersion {
		return nil, fmt.Errorf("unsupported favorites document version %d", doc.Version)
	}
	return toSet(doc.Favorites), nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
