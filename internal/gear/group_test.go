package gear

import (
	"testing"

	"github.com/google/uuid"

	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
)

func item(category enums.GearCategory, name string) models.GearItem {
	return models.GearItem{ID: uuid.New(), Category: category, Name: name}
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		name   string
		base   string
		copyNo int
	}{
		{"Camera A", "Camera A", 1},
		{"Camera A #2", "Camera A", 2},
		{"Camera A #10", "Camera A", 10},
		{"  Camera A #3  ", "Camera A", 3},
		{"Camera A#2", "Camera A#2", 1}, // no space, not a copy suffix
		{"Camera A # 2", "Camera A # 2", 1},
		{"#2", "#2", 1},
	}
	for _, tc := range cases {
		base, copyNo := SplitName(tc.name)
		if base != tc.base || copyNo != tc.copyNo {
			t.Errorf("SplitName(%q) = (%q, %d), want (%q, %d)", tc.name, base, copyNo, tc.base, tc.copyNo)
		}
	}
}

func TestCopyNameRoundTrip(t *testing.T) {
	for copyNo := 1; copyNo <= 12; copyNo++ {
		name := CopyName("Zoom H6", copyNo)
		base, got := SplitName(name)
		if base != "Zoom H6" || got != copyNo {
			t.Fatalf("round trip failed for copy %d: got (%q, %d)", copyNo, base, got)
		}
	}
}

func TestGroupItemsCameraScenario(t *testing.T) {
	items := []models.GearItem{
		item(enums.GearCategoryCamera, "Camera A #2"),
		item(enums.GearCategoryCamera, "Camera A"),
	}

	groups := GroupItems(items)
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	g := groups[0]
	if g.Quantity() != 2 {
		t.Fatalf("expected qty 2, got %d", g.Quantity())
	}
	if g.Primary().Name != "Camera A" {
		t.Fatalf("expected primary to be the unsuffixed copy, got %q", g.Primary().Name)
	}
	if g.BaseName != "Camera A" {
		t.Fatalf("unexpected base name %q", g.BaseName)
	}
}

func TestGroupItemsSeparatesByCategory(t *testing.T) {
	items := []models.GearItem{
		item(enums.GearCategoryCamera, "Alpha"),
		item(enums.GearCategoryLens, "Alpha"),
	}
	groups := GroupItems(items)
	if len(groups) != 2 {
		t.Fatalf("same name in different categories must not merge, got %d groups", len(groups))
	}
}

func TestGroupItemsSortedByCategoryThenBase(t *testing.T) {
	items := []models.GearItem{
		item(enums.GearCategoryLight, "Zebra"),
		item(enums.GearCategoryAudio, "Mic"),
		item(enums.GearCategoryAudio, "Boom"),
	}
	groups := GroupItems(items)
	want := []string{"Boom", "Mic", "Zebra"}
	for i, g := range groups {
		if g.BaseName != want[i] {
			t.Fatalf("unexpected order at %d: got %q want %q", i, g.BaseName, want[i])
		}
	}
}

func TestGroupRoundTrip(t *testing.T) {
	// group(flatten(g)) == g for the grouping function's own output
	items := []models.GearItem{
		item(enums.GearCategoryTripod, "Sticks"),
		item(enums.GearCategoryTripod, "Sticks #2"),
		item(enums.GearCategoryTripod, "Sticks #3"),
		item(enums.GearCategoryPower, "V-Mount"),
	}
	first := GroupItems(items)

	var flattened []models.GearItem
	for _, g := range first {
		flattened = append(flattened, g.Items...)
	}
	second := GroupItems(flattened)

	if len(first) != len(second) {
		t.Fatalf("group count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].BaseName != second[i].BaseName || first[i].Category != second[i].Category {
			t.Fatalf("group %d changed identity", i)
		}
		if first[i].Quantity() != second[i].Quantity() {
			t.Fatalf("group %d changed quantity", i)
		}
		for j := range first[i].Items {
			if first[i].Items[j].ID != second[i].Items[j].ID {
				t.Fatalf("group %d item %d changed order", i, j)
			}
		}
	}
}
