// Package filter describes ad-hoc list conditions passed from the query string.
package filter

import (
	"fmt"
	"strings"
)

// ComparisonType is the operator of a condition.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	Less           ComparisonType = "lt"
	Greater        ComparisonType = "gt"
	LessOrEqual    ComparisonType = "lte"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"        // comma-separated values
	NotInList      ComparisonType = "nin"       // comma-separated values
	Contains       ComparisonType = "contains"  // ILIKE %val%
	NotContains    ComparisonType = "ncontains" // NOT ILIKE %val%
	IsNull         ComparisonType = "null"
	IsNotNull      ComparisonType = "not_null"
)

var operators = map[ComparisonType]bool{
	Equal: true, NotEqual: true, Less: true, Greater: true, LessOrEqual: true,
	GreaterOrEqual: true, InList: true, NotInList: true, Contains: true,
	NotContains: true, IsNull: true, IsNotNull: true,
}

// Item is one condition. Field is a snake_case column name; repositories
// whitelist it against their own columns.
type Item struct {
	Field    string         `json:"field"`
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

// Parse reads "field:op:value" (value optional for null/not_null).
func Parse(raw string) (Item, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return Item{}, fmt.Errorf("filter %q: expected field:operator:value", raw)
	}

	item := Item{Field: parts[0], Operator: ComparisonType(parts[1])}
	if !operators[item.Operator] {
		return Item{}, fmt.Errorf("filter %q: unknown operator %q", raw, parts[1])
	}

	switch item.Operator {
	case IsNull, IsNotNull:
		return item, nil
	}
	if len(parts) < 3 {
		return Item{}, fmt.Errorf("filter %q: value is required", raw)
	}
	if item.Operator == InList || item.Operator == NotInList {
		item.Value = strings.Split(parts[2], ",")
	} else {
		item.Value = parts[2]
	}
	return item, nil
}
