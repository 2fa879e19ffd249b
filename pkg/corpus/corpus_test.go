package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestParseName tests year extraction from dump file names
func TestParseName(t *testing.T) {
	tests := []struct {
		name     string
		wantYear int
		wantErr  bool
	}{
		{"bview.20200101.0000.gz", 2020, false},
		{"rib.20040115.0800.bz2", 2004, false},
		{"updates-19991231", 1999, false},
		{"dump_2003_20030601.mrt", 2003, false},
		{"bview.2020010.0000.gz", 0, true},   // seven digits
		{"bview.202001011.0000.gz", 0, true}, // nine digits
		{"bview.latest.gz", 0, true},
		{"bview.00010101.0000.gz", 0, true}, // year out of range
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, date, err := ParseName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if year != tt.wantYear {
				t.Errorf("ParseName(%q) year = %d, want %d", tt.name, year, tt.wantYear)
			}
			if date.Year() != tt.wantYear {
				t.Errorf("ParseName(%q) date = %v", tt.name, date)
			}
		})
	}
}

// TestParseName_NotACalendarDate tests that only the year part of the
// numeral has to be valid
func TestParseName_NotACalendarDate(t *testing.T) {
	tests := []struct {
		name     string
		wantYear int
	}{
		{"bview.20201301.0000.gz", 2020}, // month 13
		{"rib.20041315.0000.bz2", 2004},
		{"rib.20040230", 2004}, // February 30
	}

	for _, tt := range tests {
		year, date, err := ParseName(tt.name)
		if err != nil {
			t.Fatalf("ParseName(%q) failed: %v", tt.name, err)
		}
		if year != tt.wantYear {
			t.Errorf("ParseName(%q) year = %d, want %d", tt.name, year, tt.wantYear)
		}
		if !date.IsZero() {
			t.Errorf("ParseName(%q) date = %v, want zero", tt.name, date)
		}
	}
}

func TestParseName_NoDate(t *testing.T) {
	_, _, err := ParseName("README")
	if !errors.Is(err, ErrNoDate) {
		t.Errorf("Expected ErrNoDate, got %v", err)
	}
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "bview.20200101.0000.gz")
	touch(t, dir, "bview.20040101.0000.gz")
	touch(t, dir, "bview.20120601.0000.gz")
	touch(t, dir, "notes.txt")
	touch(t, dir, ".bview.20100101.0000.gz.part")
	if err := os.Mkdir(filepath.Join(dir, "archive.20090101"), 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	files, err := Discover(dir, nil)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	wantYears := []int{2004, 2012, 2020}
	if len(files) != len(wantYears) {
		t.Fatalf("Discover returned %d files, want %d", len(files), len(wantYears))
	}
	for i, f := range files {
		if f.Year != wantYears[i] {
			t.Errorf("files[%d].Year = %d, want %d", i, f.Year, wantYears[i])
		}
		if filepath.Dir(f.Path) != dir {
			t.Errorf("files[%d].Path = %s, want inside %s", i, f.Path, dir)
		}
	}

	want := time.Date(2012, time.June, 1, 0, 0, 0, 0, time.UTC)
	if !files[1].Date.Equal(want) {
		t.Errorf("files[1].Date = %v, want %v", files[1].Date, want)
	}
	if files[1].Name() != "bview.20120601.0000.gz" {
		t.Errorf("files[1].Name() = %s", files[1].Name())
	}
}

func TestDiscover_DuplicateYear(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "bview.20200101.0000.gz")
	touch(t, dir, "bview.20200701.0000.gz")

	_, err := Discover(dir, nil)
	if !errors.Is(err, ErrDuplicateYear) {
		t.Errorf("Expected ErrDuplicateYear, got %v", err)
	}
}

func TestDiscover_EmptyDir(t *testing.T) {
	files, err := Discover(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected no files, got %d", len(files))
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "absent"), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}
