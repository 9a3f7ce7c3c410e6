package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Helper Functions
// ============================================================================

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}

func getStringSliceFromRecord(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return []string{}
	}
	if slice, ok := val.([]interface{}); ok {
		result := make([]string, 0, len(slice))
		for _, v := range slice {
			if str, ok := v.(string); ok {
				result = append(result, str)
			}
		}
		return result
	}
	return []string{}
}

// productFromRecord reads the id/name/category/fit/brand/size columns
func productFromRecord(record *neo4j.Record) *Product {
	return &Product{
		ID:       getStringFromRecord(record, "id"),
		Name:     getStringFromRecord(record, "name"),
		Category: getStringFromRecord(record, "category"),
		Fit:      getStringFromRecord(record, "fit"),
		Brand:    getStringFromRecord(record, "brand"),
		Size:     getStringFromRecord(record, "size"),
	}
}
