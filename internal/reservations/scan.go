package reservations

import (
	"strings"

	"github.com/javi-app/javi-backend/internal/gear"
	"github.com/javi-app/javi-backend/pkg/db/models"
	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

// ScanMatch resolves scanned text to exactly one physical gear item. Match
// order: exact id, asset tag, serial, qr code, full name, base name; first
// hit wins. Comparison is case-insensitive on trimmed text. No match is an
// error; a scan that resolves to nothing must never be silently dropped.
func ScanMatch(items []models.GearItem, scanned string) (*models.GearItem, error) {
	needle := strings.ToLower(strings.TrimSpace(scanned))
	if needle == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scanned text is empty")
	}

	match := func(value string) bool {
		return strings.ToLower(strings.TrimSpace(value)) == needle
	}

	for i := range items {
		if match(items[i].ID.String()) {
			return &items[i], nil
		}
	}
	for i := range items {
		if items[i].AssetTag != "" && match(items[i].AssetTag) {
			return &items[i], nil
		}
	}
	for i := range items {
		if items[i].Serial != "" && match(items[i].Serial) {
			return &items[i], nil
		}
	}
	for i := range items {
		if items[i].QRCode != "" && match(items[i].QRCode) {
			return &items[i], nil
		}
	}
	for i := range items {
		if match(items[i].Name) {
			return &items[i], nil
		}
	}
	for i := range items {
		base, _ := gear.SplitName(items[i].Name)
		if match(base) {
			return &items[i], nil
		}
	}

	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no gear item matches the scanned code")
}
