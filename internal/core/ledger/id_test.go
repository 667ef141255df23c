package ledger

import "testing"

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		currentMax int
		want       string
	}{
		{name: "first transaction (max=0)", prefix: PrefixTransaction, currentMax: 0, want: "TX-001"},
		{name: "tenth partition (max=9)", prefix: PrefixPartition, currentMax: 9, want: "PART-010"},
		{name: "hundredth loan (max=99)", prefix: PrefixLoan, currentMax: 99, want: "LOAN-100"},
		{name: "three-digit boundary (max=999)", prefix: PrefixProfile, currentMax: 999, want: "BP-1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateID(tt.prefix, tt.currentMax)
			if got != tt.want {
				t.Errorf("GenerateID(%q, %d) = %q, want %q", tt.prefix, tt.currentMax, got, tt.want)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		id     string
		want   int
	}{
		{name: "valid single digit", prefix: PrefixUser, id: "USER-001", want: 1},
		{name: "valid four digits", prefix: PrefixTransaction, id: "TX-1000", want: 1000},
		{name: "other prefix", prefix: PrefixUser, id: "ACC-001", want: -1},
		{name: "prefix without dash", prefix: PrefixCategory, id: "CAT001", want: -1},
		{name: "not a number", prefix: PrefixLoan, id: "LOAN-abc", want: -1},
		{name: "user name", prefix: PrefixUser, id: "ann", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.prefix, tt.id)
			if got != tt.want {
				t.Errorf("ParseNumber(%q, %q) = %d, want %d", tt.prefix, tt.id, got, tt.want)
			}
		})
	}
}

func TestEntityType(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"TX-004", "transaction"},
		{"LOAN-001", "loan"},
		{"BP-001", "budget_profile"},
		{"PART-003", "partition"},
		{"LOG-010", ""},
		{"ann", ""},
	}
	for _, tt := range tests {
		if got := EntityType(tt.id); got != tt.want {
			t.Errorf("EntityType(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
