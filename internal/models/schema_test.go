package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func uniqueIndexColumns(t *testing.T, model any) [][]string {
	t.Helper()
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	var out [][]string
	for _, idx := range s.ParseIndexes() {
		if idx.Class != "UNIQUE" {
			continue
		}
		cols := make([]string, 0, len(idx.Fields))
		for _, f := range idx.Fields {
			cols = append(cols, f.DBName)
		}
		out = append(out, cols)
	}
	return out
}

// The storage layer must enforce these structurally, not just in application
// logic: they are what concurrent duplicate writes serialize on.
func TestUniqueIndexes(t *testing.T) {
	tests := []struct {
		name  string
		model any
		cols  []string
	}{
		{name: "one batch per product and date", model: &Batch{}, cols: []string{"product_id", "batch_date"}},
		{name: "one order per payment ref", model: &Order{}, cols: []string{"payment_ref"}},
		{name: "one subscription per user and payment method", model: &Subscription{}, cols: []string{"user_id", "payment_method_ref"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, uniqueIndexColumns(t, tt.model), tt.cols)
		})
	}
}
