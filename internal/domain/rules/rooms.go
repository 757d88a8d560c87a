package rules

import (
	"strings"

	"github.com/wybmv/backend/internal/domain/enums"
)

var roomCatalog = map[enums.Building][]string{
	enums.BuildingItaca: {
		"11", "12", "13", "14",
		"101SX", "101DX", "102", "103", "104", "105", "106", "107", "108",
		"201SX", "201DX", "202", "203", "204", "205", "206", "207", "208",
		"301SX", "301DX", "302", "303", "304", "305", "306", "307", "308",
	},
	enums.BuildingPadiglioneC: {
		"101", "102", "103", "104", "105",
		"201", "202", "203", "204",
		"301", "302", "303", "304",
		"401", "402", "403", "404", "405",
	},
	enums.BuildingPadiglioneD: roomRange(
		[2]int{1, 12},
		[2]int{101, 123},
		[2]int{201, 224},
		[2]int{301, 324},
		[2]int{401, 410},
	),
}

func RoomsOf(building enums.Building) []string {
	rooms := roomCatalog[building]
	out := make([]string, len(rooms))
	copy(out, rooms)
	return out
}

func FormatRoom(building enums.Building, room string) string {
	return string(building) + "-" + room
}

// ParseRoom splits a stored room value and checks it against the catalog.
func ParseRoom(value string) (enums.Building, string, bool) {
	value = strings.TrimSpace(value)
	for _, building := range enums.Buildings {
		prefix := string(building) + "-"
		if !strings.HasPrefix(value, prefix) {
			continue
		}
		room := strings.TrimPrefix(value, prefix)
		for _, known := range roomCatalog[building] {
			if known == room {
				return building, room, true
			}
		}
		return "", "", false
	}
	return "", "", false
}

func roomRange(spans ...[2]int) []string {
	out := make([]string, 0, 128)
	for _, span := range spans {
		for n := span[0]; n <= span[1]; n++ {
			out = append(out, pad3(n))
		}
	}
	return out
}

func pad3(n int) string {
	s := []byte{'0', '0', '0'}
	for i := 2; i >= 0 && n > 0; i-- {
		s[i] = byte('0' + n%10)
		n /= 10
	}
	return string(s)
}
