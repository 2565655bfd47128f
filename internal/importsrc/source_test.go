package importsrc

import (
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/config"
)

func TestFromSpecDispatchesOnKind(t *testing.T) {
	cases := []struct {
		kind string
		spec config.ImportSourceSpec
	}{
		{"dir", config.ImportSourceSpec{Kind: "dir", Directory: "/data", Format: "graphml"}},
		{"tar", config.ImportSourceSpec{Kind: "tar", URL: "https://example.com/a.tar", Format: "graphml"}},
		{"url", config.ImportSourceSpec{Kind: "url", URL: "https://example.com/a.graphml", Format: "graphml"}},
		{"gcs", config.ImportSourceSpec{Kind: "gcs", GCSBucket: "b", Format: "graphml"}},
	}
	for _, c := range cases {
		src, err := FromSpec(c.spec, nil)
		if err != nil {
			t.Errorf("FromSpec(kind=%s): %v", c.kind, err)
			continue
		}
		if src == nil {
			t.Errorf("FromSpec(kind=%s) returned a nil Source", c.kind)
		}
	}
}

func TestFromSpecRejectsUnknownKind(t *testing.T) {
	_, err := FromSpec(config.ImportSourceSpec{Kind: "ftp", Format: "graphml"}, nil)
	if err == nil {
		t.Errorf("FromSpec with an unrecognized kind should fail")
	}
}
