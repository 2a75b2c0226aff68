package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// GeoNames postal flat-file columns (tab-separated, 12 expected):
// 0 country_code, 1 postal_code, 2 place_name, 3 admin1_name, 4 admin1_code,
// 5 admin2_name, 6 admin2_code, 7 admin3_name, 8 admin3_code, 9 lat, 10 lon,
// 11 accuracy.
const (
	colPostalCode = 1
	colPlaceName  = 2
	colRegionCode = 4
	colLatitude   = 9
	colLongitude  = 10

	minColumns = 11
)

// LoadPoints parses the flat file at path into centroid records, preserving
// file order. Malformed rows (too few columns, unparseable coordinates, empty
// postal code) are skipped silently; the published dataset is known to contain
// a few. Returns ErrDatasetCorrupt if no valid rows parse at all.
func LoadPoints(path string) ([]PostalPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open flat file")
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1 // malformed rows are handled per-row
	reader.LazyQuotes = true

	var (
		points  []PostalPoint
		skipped int
	)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "dataset: read flat file")
		}

		if len(rec) < minColumns {
			skipped++
			continue
		}

		code := strings.TrimSpace(rec[colPostalCode])
		if code == "" {
			skipped++
			continue
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(rec[colLatitude]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(rec[colLongitude]), 64)
		if latErr != nil || lonErr != nil {
			skipped++
			continue
		}

		points = append(points, PostalPoint{
			Code:      normalizeCode(code),
			Place:     strings.TrimSpace(rec[colPlaceName]),
			Region:    strings.TrimSpace(rec[colRegionCode]),
			Latitude:  lat,
			Longitude: lon,
		})
	}

	if len(points) == 0 {
		return nil, eris.Wrapf(ErrDatasetCorrupt, "dataset: no valid rows in %s", path)
	}

	if skipped > 0 {
		zap.L().Debug("dataset rows skipped",
			zap.String("component", "dataset.loader"),
			zap.Int("skipped", skipped),
			zap.Int("loaded", len(points)),
		)
	}
	return points, nil
}

// normalizeCode zero-pads purely numeric postal codes to the canonical 5-digit
// width; anything else is kept verbatim.
func normalizeCode(code string) string {
	if len(code) >= 5 || !isDigits(code) {
		return code
	}
	return strings.Repeat("0", 5-len(code)) + code
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
