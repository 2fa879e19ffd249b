// Package corpus discovers the per-year routing table dumps of a data
// directory. Each file carries its date as an eight digit YYYYMMDD
// numeral, e.g. bview.20200101.0000.gz or rib.20040115.0000.bz2.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dd0wney/cluso-asgraph/pkg/logging"
	"github.com/dd0wney/cluso-asgraph/pkg/validation"
)

var (
	// ErrDuplicateYear means two files map to the same year
	ErrDuplicateYear = errors.New("duplicate corpus year")
	// ErrNoDate means a file name carries no date numeral
	ErrNoDate = errors.New("no date in file name")
)

// A run of digits bounded by non-digits; only runs of exactly eight count
var digitRun = regexp.MustCompile(`[0-9]+`)

// File is one dump of the corpus
type File struct {
	Path string
	Year int
	// Date is zero when the numeral is not a calendar date
	Date time.Time
}

// Name returns the base name of the file
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// ParseName extracts the year from the first standalone eight digit
// numeral of a file name: the numeral divided by 10000. date is the
// numeral read as YYYYMMDD, or zero when it is not a calendar date.
func ParseName(name string) (year int, date time.Time, err error) {
	for _, run := range digitRun.FindAllString(name, -1) {
		if len(run) != 8 {
			continue
		}
		stamp, _ := strconv.Atoi(run)
		year = stamp / 10000
		if err := validation.ValidateYear(year); err != nil {
			return 0, time.Time{}, fmt.Errorf("%s: %w", name, err)
		}
		if d, err := time.Parse("20060102", run); err == nil {
			date = d
		}
		return year, date, nil
	}
	return 0, time.Time{}, fmt.Errorf("%w: %s", ErrNoDate, name)
}

// Discover lists the dumps of dir sorted by year. Subdirectories, hidden
// files and files without a valid date are skipped with a debug log. Two
// files of the same year are an error wrapping ErrDuplicateYear.
func Discover(dir string, logger logging.Logger) ([]File, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	byYear := make(map[int]File, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		year, date, err := ParseName(name)
		if err != nil {
			logger.Debug("skipping corpus file", logging.File(name), logging.Error(err))
			continue
		}

		f := File{Path: filepath.Join(dir, name), Year: year, Date: date}
		if prev, ok := byYear[year]; ok {
			return nil, fmt.Errorf("%w: %d in %s and %s", ErrDuplicateYear, year, prev.Name(), name)
		}
		byYear[year] = f
	}

	files := make([]File, 0, len(byYear))
	for _, f := range byYear {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Year < files[j].Year
	})

	logger.Debug("corpus discovered", logging.String("dir", dir), logging.Count(len(files)))
	return files, nil
}
