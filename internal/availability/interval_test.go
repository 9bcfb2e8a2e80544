package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInterval(t *testing.T, id, room, date, start, end string) Interval {
	t.Helper()
	iv, err := NewInterval(id, room, date, start, end)
	require.NoError(t, err)
	return iv
}

func TestOverlaps(t *testing.T) {
	base := mustInterval(t, "a", "room-1", "2025-06-10", "09:00", "10:00")

	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"touching end", mustInterval(t, "b", "room-1", "2025-06-10", "10:00", "11:00"), false},
		{"touching start", mustInterval(t, "b", "room-1", "2025-06-10", "08:00", "09:00"), false},
		{"interior overlap", mustInterval(t, "b", "room-1", "2025-06-10", "09:30", "10:30"), true},
		{"contained", mustInterval(t, "b", "room-1", "2025-06-10", "09:15", "09:45"), true},
		{"containing", mustInterval(t, "b", "room-1", "2025-06-10", "08:00", "12:00"), true},
		{"identical", mustInterval(t, "b", "room-1", "2025-06-10", "09:00", "10:00"), true},
		{"other room", mustInterval(t, "b", "room-2", "2025-06-10", "09:30", "10:30"), false},
		{"other date", mustInterval(t, "b", "room-1", "2025-06-11", "09:30", "10:30"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(base, tc.other))
			assert.Equal(t, tc.want, Overlaps(tc.other, base), "overlap must be symmetric")
		})
	}
}

func TestIsAvailable(t *testing.T) {
	existing := []Interval{
		mustInterval(t, "r1", "room-1", "2025-06-10", "09:00", "10:00"),
		mustInterval(t, "r2", "room-1", "2025-06-10", "13:00", "14:30"),
		mustInterval(t, "r3", "room-2", "2025-06-10", "09:00", "17:00"),
	}

	t.Run("strict interior overlap is a conflict", func(t *testing.T) {
		candidate := mustInterval(t, "", "room-1", "2025-06-10", "09:30", "10:30")
		assert.False(t, IsAvailable(candidate, existing, ""))
	})

	t.Run("gap between reservations is free", func(t *testing.T) {
		candidate := mustInterval(t, "", "room-1", "2025-06-10", "10:00", "13:00")
		assert.True(t, IsAvailable(candidate, existing, ""))
	})

	t.Run("self is excluded on edit", func(t *testing.T) {
		for _, self := range existing {
			var others []Interval
			for _, iv := range existing {
				if iv.ID != self.ID {
					others = append(others, iv)
				}
			}
			for pos := 0; pos <= len(others); pos++ {
				list := append(append(append([]Interval{}, others[:pos]...), self), others[pos:]...)
				assert.True(t, IsAvailable(self, list, self.ID), "%s at position %d", self.ID, pos)
			}
		}
	})

	t.Run("exclusion only skips the matching id", func(t *testing.T) {
		candidate := mustInterval(t, "new", "room-1", "2025-06-10", "09:30", "13:30")
		assert.False(t, IsAvailable(candidate, existing, "r1"))
		assert.Len(t, Conflicts(candidate, existing, "r1"), 1)
		assert.Len(t, Conflicts(candidate, existing, ""), 2)
	})

	t.Run("empty list", func(t *testing.T) {
		candidate := mustInterval(t, "", "room-4", "2025-06-10", "08:00", "20:00")
		assert.True(t, IsAvailable(candidate, nil, ""))
	})
}

func TestNewIntervalRejectsMalformedInput(t *testing.T) {
	cases := [][3]string{
		{"2025-6-10", "09:00", "10:00"},
		{"2025-06-10", "9:00", "10:00"},
		{"2025-06-10", "09:00", "24:00"},
		{"2025/06/10", "09:00", "10:00"},
		{"2025-06-10", "09:00", "10:0"},
	}
	for _, c := range cases {
		_, err := NewInterval("x", "room-1", c[0], c[1], c[2])
		assert.ErrorIs(t, err, ErrMalformedInput, "%v", c)
	}
}
