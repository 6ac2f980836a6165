package gear

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/javi-app/javi-backend/pkg/db/models"
	"github.com/javi-app/javi-backend/pkg/enums"
)

// copySuffixRe captures the " #N" multiplicity suffix. A user-chosen name
// that happens to end in "#3" is indistinguishable from a real copy suffix;
// that ambiguity is part of the naming convention and is kept as-is.
var copySuffixRe = regexp.MustCompile(`^(.*\S)\s+#(\d+)$`)

// SplitName returns the base name and copy number. Unsuffixed names are copy 1.
func SplitName(name string) (string, int) {
	trimmed := strings.TrimSpace(name)
	if m := copySuffixRe.FindStringSubmatch(trimmed); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && n >= 1 {
			return m[1], n
		}
	}
	return trimmed, 1
}

// CopyName renders the display name for the given copy number.
func CopyName(base string, copyNo int) string {
	if copyNo <= 1 {
		return base
	}
	return fmt.Sprintf("%s #%d", base, copyNo)
}

// Group is the logical-item projection over physical copies. It is never
// persisted; quantity is always derived from the copy count.
type Group struct {
	Category enums.GearCategory
	BaseName string
	Items    []models.GearItem
}

// Quantity returns the number of physical copies in the group.
func (g Group) Quantity() int {
	return len(g.Items)
}

// Primary returns the unsuffixed (lowest-numbered) copy, the template for
// shared fields.
func (g Group) Primary() *models.GearItem {
	if len(g.Items) == 0 {
		return nil
	}
	return &g.Items[0]
}

// MaxCopyNo returns the highest copy number present in the group.
func (g Group) MaxCopyNo() int {
	max := 0
	for _, item := range g.Items {
		if _, n := SplitName(item.Name); n > max {
			max = n
		}
	}
	return max
}

// GroupItems projects physical copies into logical groups, keyed by
// (category, base name). Copies are sorted by copy number ascending and the
// groups by category then base name.
func GroupItems(items []models.GearItem) []Group {
	type key struct {
		category enums.GearCategory
		base     string
	}
	buckets := make(map[key][]models.GearItem)
	for _, item := range items {
		base, _ := SplitName(item.Name)
		k := key{category: item.Category, base: base}
		buckets[k] = append(buckets[k], item)
	}

	groups := make([]Group, 0, len(buckets))
	for k, members := range buckets {
		sort.SliceStable(members, func(i, j int) bool {
			_, ni := SplitName(members[i].Name)
			_, nj := SplitName(members[j].Name)
			if ni != nj {
				return ni < nj
			}
			return members[i].Name < members[j].Name
		})
		groups = append(groups, Group{Category: k.category, BaseName: k.base, Items: members})
	}

	sort.Slice(groups, func(i, j int) bool {
		ki := string(groups[i].Category) + groups[i].BaseName
		kj := string(groups[j].Category) + groups[j].BaseName
		return ki < kj
	})
	return groups
}
