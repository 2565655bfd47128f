package config

import (
	"strings"
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
)

func TestParsePuncture(t *testing.T) {
	r := NewReader(strings.NewReader("ANGULAR\nTENSION\n"), "puncture.cfg")
	got, err := ParsePuncture(r)
	if err != nil {
		t.Fatalf("ParsePuncture: %v", err)
	}
	if !got.Contains(enums.PropAngular) || !got.Contains(enums.PropTension) || got.Len() != 2 {
		t.Errorf("ParsePuncture = %v, want {ANGULAR, TENSION}", got)
	}
	if got.Contains(enums.PropRDFGlobal) {
		t.Errorf("ParsePuncture should not mark an unlisted property as punctured")
	}
}

func TestParsePunctureRejectsMultipleTokens(t *testing.T) {
	r := NewReader(strings.NewReader("ANGULAR TENSION\n"), "puncture.cfg")
	if _, err := ParsePuncture(r); err == nil {
		t.Errorf("ParsePuncture should reject more than one token per line")
	}
}

func TestParsePunctureRejectsUnknownProperty(t *testing.T) {
	r := NewReader(strings.NewReader("BOGUS\n"), "puncture.cfg")
	if _, err := ParsePuncture(r); err == nil {
		t.Errorf("ParsePuncture should reject an unrecognized property name")
	}
}

func TestDefaultPunctureIsEmpty(t *testing.T) {
	got := DefaultPuncture()
	if got.Len() != 0 {
		t.Errorf("DefaultPuncture() = %v, want empty", got)
	}
}
