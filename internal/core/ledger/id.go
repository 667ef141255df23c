package ledger

import (
	"fmt"
	"strings"
)

// ID prefixes for every persisted entity.
const (
	PrefixUser        = "USER"
	PrefixAccount     = "ACC"
	PrefixPartition   = "PART"
	PrefixCategory    = "CAT"
	PrefixTransaction = "TX"
	PrefixLoan        = "LOAN"
	PrefixProfile     = "BP"
	PrefixLog         = "LOG"
)

// GenerateID generates an entity ID from the current max number.
// The format is PREFIX-XXX where XXX is a zero-padded 3-digit number.
func GenerateID(prefix string, currentMax int) string {
	return fmt.Sprintf("%s-%03d", prefix, currentMax+1)
}

// ParseNumber extracts the numeric portion from an entity ID.
// Returns -1 if the ID does not carry the prefix.
func ParseNumber(prefix, id string) int {
	rest, ok := strings.CutPrefix(id, prefix+"-")
	if !ok {
		return -1
	}
	var num int
	if _, err := fmt.Sscanf(rest, "%d", &num); err != nil {
		return -1
	}
	return num
}

var entityTypes = map[string]string{
	PrefixUser:        "user",
	PrefixAccount:     "account",
	PrefixPartition:   "partition",
	PrefixCategory:    "category",
	PrefixTransaction: "transaction",
	PrefixLoan:        "loan",
	PrefixProfile:     "budget_profile",
}

// EntityType returns the activity log entity type of an ID, or "" when the
// prefix is unknown.
func EntityType(id string) string {
	prefix, _, ok := strings.Cut(id, "-")
	if !ok {
		return ""
	}
	return entityTypes[prefix]
}
