package services

import (
	"testing"

	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/stretchr/testify/require"
)

func TestSelectPrimary(t *testing.T) {
	tests := []struct {
		name      string
		list      []models.Convention
		preferred string
		want      string
		ok        bool
	}{
		{"empty", nil, "X", "", false},
		{"preferred ignores case", []models.Convention{conv(1, "A", true), conv(2, "B", false)}, "b", "B", true},
		{"preferred wins over active", []models.Convention{conv(1, "A", true), conv(2, "B", false)}, "B", "B", true},
		{"only one", []models.Convention{conv(1, "A", false)}, "missing", "A", true},
		{"first active", []models.Convention{conv(1, "A", false), conv(2, "B", true), conv(3, "C", true)}, "", "B", true},
		{"first when none active", []models.Convention{conv(1, "A", false), conv(2, "B", false)}, "", "A", true},
		{"unknown preferred falls through", []models.Convention{conv(1, "A", false), conv(2, "B", true)}, "Z", "B", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectPrimary(tt.list, tt.preferred)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got.ShortName)
		})
	}
}

func TestFilterConventions(t *testing.T) {
	list := []models.Convention{conv(1, "A", true), conv(2, "B", false)}
	require.Len(t, filterConventions(list, true), 2)
	got := filterConventions(list, false)
	require.Len(t, got, 1)
	require.Equal(t, "A", got[0].ShortName)
}
