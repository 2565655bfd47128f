package config

import (
	"strings"
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
)

func TestParseGraphsReadsHeaderThenRows(t *testing.T) {
	r := NewReader(strings.NewReader("TINY SMALL\nGRID 4 *\n"), "graphs.cfg")
	got, err := ParseGraphs(r)
	if err != nil {
		t.Fatalf("ParseGraphs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ParseGraphs returned %d desires, want 2", len(got))
	}
	if got[0].Gen != enums.GenGRID || got[0].Size != enums.SizeTiny || got[0].Count == nil || *got[0].Count != 4 {
		t.Errorf("first desire = %+v, want GRID/TINY/4", got[0])
	}
	if got[1].Gen != enums.GenGRID || got[1].Size != enums.SizeSmall || got[1].Count != nil {
		t.Errorf("second desire = %+v, want GRID/SMALL/* (nil count)", got[1])
	}
}

func TestParseGraphsRejectsWrongColumnCount(t *testing.T) {
	r := NewReader(strings.NewReader("TINY SMALL\nGRID 4\n"), "graphs.cfg")
	if _, err := ParseGraphs(r); err == nil {
		t.Errorf("ParseGraphs should reject a row with the wrong number of columns")
	}
}

func TestParseGraphsRejectsNegativeCount(t *testing.T) {
	r := NewReader(strings.NewReader("TINY\nGRID -1\n"), "graphs.cfg")
	if _, err := ParseGraphs(r); err == nil {
		t.Errorf("ParseGraphs should reject a negative count")
	}
}

func TestParseGraphsRejectsUnknownGenerator(t *testing.T) {
	r := NewReader(strings.NewReader("TINY\nNOSUCHGEN 1\n"), "graphs.cfg")
	if _, err := ParseGraphs(r); err == nil {
		t.Errorf("ParseGraphs should reject an unrecognized generator name")
	}
}

func TestDefaultGraphsExcludesImportedGenerators(t *testing.T) {
	got := DefaultGraphs()
	for _, d := range got {
		if d.Gen.Imported() && d.Gen != enums.GenROME {
			t.Errorf("DefaultGraphs() should not desire non-ROME imported generator %v directly", d.Gen)
		}
	}
	foundRome := false
	for _, d := range got {
		if d.Gen == enums.GenROME && d.Size == enums.SizeSmall {
			foundRome = true
			if d.Count == nil || *d.Count != 5 {
				t.Errorf("ROME/SMALL count = %v, want 5", d.Count)
			}
		}
	}
	if !foundRome {
		t.Errorf("DefaultGraphs() should include a ROME/SMALL entry")
	}
}
