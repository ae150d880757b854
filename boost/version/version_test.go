package version

import "testing"

func TestParseSemVer(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1.2.3", "1.2.3", false},
		{"0.1.0-pre", "0.1.0-pre", false},
		{"0.1.0-pre+release.local", "0.1.0-pre+release.local", false},
		{"01.2.3", "", true},
		{"1.2", "", true},
		{"v1.2.3", "", true},
	}
	for _, tt := range tests {
		v, err := ParseSemVer(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if s := v.String(); s != tt.want {
			t.Errorf("%q: wanted %q, got %q", tt.in, tt.want, s)
		}
	}
}

func TestParseKeepsBuild(t *testing.T) {
	if v := Parse("0.2.0+release.local"); v != "0.2.0+release.local" {
		t.Fatalf("build metadata altered: %s", v)
	}
}

func TestNormalizeString(t *testing.T) {
	if s := NormalizeString("abc_123/x.y"); s != "abc123x.y" {
		t.Fatalf("wrong normalized string %q", s)
	}
}
