package update

import (
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr bool
	}{
		{
			name:  "simple version",
			input: "2.0.0",
			want:  Version{Major: 2, Minor: 0, Patch: 0},
		},
		{
			name:  "version with v prefix",
			input: "v1.2.3",
			want:  Version{Major: 1, Minor: 2, Patch: 3},
		},
		{
			name:  "version with prerelease",
			input: "1.0.0-rc.1",
			want:  Version{Major: 1, Minor: 0, Patch: 0, Prerelease: "rc.1"},
		},
		{
			name:  "build metadata dropped",
			input: "v2.1.0+build.7",
			want:  Version{Major: 2, Minor: 1, Patch: 0},
		},
		{
			name:  "surrounding whitespace",
			input: " 0.9.0\n",
			want:  Version{Major: 0, Minor: 9, Patch: 0},
		},
		{
			name:    "invalid format",
			input:   "invalid",
			wantErr: true,
		},
		{
			name:    "missing patch",
			input:   "1.0",
			wantErr: true,
		},
		{
			name:    "dev build",
			input:   "dev",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseVersion() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("ParseVersion() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		want    string
	}{
		{
			name:    "simple version",
			version: Version{Major: 2, Minor: 0, Patch: 0},
			want:    "2.0.0",
		},
		{
			name:    "version with prerelease",
			version: Version{Major: 1, Minor: 0, Patch: 0, Prerelease: "rc.1"},
			want:    "1.0.0-rc.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.version.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		name string
		v1   string
		v2   string
		want int // 1 if v1 > v2, 0 if equal, -1 if v1 < v2
	}{
		{name: "equal versions", v1: "1.2.3", v2: "1.2.3", want: 0},
		{name: "equal with v prefix", v1: "v1.2.3", v2: "1.2.3", want: 0},
		{name: "equal prereleases", v1: "1.0.0-rc.1", v2: "1.0.0-rc.1", want: 0},

		{name: "major version greater", v1: "2.0.0", v2: "1.9.9", want: 1},
		{name: "major version less", v1: "1.0.0", v2: "2.0.0", want: -1},
		{name: "minor version greater", v1: "1.9.0", v2: "1.8.5", want: 1},
		{name: "patch version less", v1: "1.0.1", v2: "1.0.2", want: -1},
		{name: "numeric not lexical", v1: "0.10.0", v2: "0.9.0", want: 1},

		{name: "stable > prerelease", v1: "1.0.0", v2: "1.0.0-rc.1", want: 1},
		{name: "prerelease < stable", v1: "1.0.0-rc.1", v2: "1.0.0", want: -1},
		{name: "rc.2 > rc.1", v1: "1.0.0-rc.2", v2: "1.0.0-rc.1", want: 1},
		{name: "rc.10 > rc.9", v1: "1.0.0-rc.10", v2: "1.0.0-rc.9", want: 1},
		{name: "beta < rc", v1: "1.0.0-beta", v2: "1.0.0-rc.1", want: -1},
		{name: "numeric identifier < alphanumeric", v1: "1.0.0-1", v2: "1.0.0-alpha", want: -1},
		{name: "longer prerelease wins on tie", v1: "1.0.0-alpha.1", v2: "1.0.0-alpha", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ver1, err := ParseVersion(tt.v1)
			if err != nil {
				t.Fatalf("Failed to parse v1: %v", err)
			}

			ver2, err := ParseVersion(tt.v2)
			if err != nil {
				t.Fatalf("Failed to parse v2: %v", err)
			}

			if got := ver1.Compare(ver2); got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.v1, tt.v2, got, tt.want)
			}
		})
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name    string
		latest  string
		current string
		want    bool
		wantErr bool
	}{
		{name: "newer", latest: "v2.0.0", current: "1.9.0", want: true},
		{name: "same", latest: "v1.9.0", current: "1.9.0", want: false},
		{name: "older", latest: "1.8.0", current: "1.9.0", want: false},
		{name: "invalid latest", latest: "nightly", current: "1.9.0", wantErr: true},
		{name: "invalid current", latest: "1.9.0", current: "dev", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsNewer(tt.latest, tt.current)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsNewer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsNewer(%s, %s) = %v, want %v", tt.latest, tt.current, got, tt.want)
			}
		})
	}
}

func TestIsDevBuild(t *testing.T) {
	for _, v := range []string{"", "dev", " dev "} {
		if !IsDevBuild(v) {
			t.Errorf("IsDevBuild(%q) = false, want true", v)
		}
	}
	if IsDevBuild("1.0.0") {
		t.Error("IsDevBuild(1.0.0) = true, want false")
	}
}
