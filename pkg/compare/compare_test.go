package compare

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNilCheck(t *testing.T) {
	v1, v2 := "a", "b"

	tests := []struct {
		name      string
		a         *string
		b         *string
		equal     bool
		needsMore bool
	}{
		{name: "both nil", a: nil, b: nil, equal: true, needsMore: false},
		{name: "first nil", a: nil, b: &v1, equal: false, needsMore: false},
		{name: "second nil", a: &v1, b: nil, equal: false, needsMore: false},
		{name: "both set", a: &v1, b: &v2, equal: false, needsMore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eq, more := NilCheck(tt.a, tt.b)
			require.Equal(t, tt.equal, eq)
			require.Equal(t, tt.needsMore, more)
		})
	}
}

func TestSlices(t *testing.T) {
	eq := func(a, b string) bool { return a == b }

	require.True(t, Slices(nil, nil, eq))
	require.True(t, Slices([]string{"id", "tenant_id"}, []string{"id", "tenant_id"}, eq))
	require.False(t, Slices([]string{"id", "tenant_id"}, []string{"tenant_id", "id"}, eq), "order matters")
	require.False(t, Slices([]string{"id"}, []string{"id", "tenant_id"}, eq))
}
