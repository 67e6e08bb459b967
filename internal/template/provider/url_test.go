package provider

import (
	"testing"
)

func TestParseGitHubURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    GitHubRef
		wantErr bool
	}{
		{
			name: "https URL",
			url:  "https://github.com/acme/templates",
			want: GitHubRef{Owner: "acme", Repo: "templates"},
		},
		{
			name: "https URL with tree branch and path",
			url:  "https://github.com/acme/templates/tree/v2/web/react",
			want: GitHubRef{Owner: "acme", Repo: "templates", Ref: "v2", Path: "web/react"},
		},
		{
			name: "https URL with tree branch only",
			url:  "https://github.com/acme/templates/tree/dev",
			want: GitHubRef{Owner: "acme", Repo: "templates", Ref: "dev"},
		},
		{
			name: "ssh URL",
			url:  "git@github.com:acme/templates.git",
			want: GitHubRef{Owner: "acme", Repo: "templates"},
		},
		{
			name: "host prefix with path",
			url:  "github.com/acme/templates/go",
			want: GitHubRef{Owner: "acme", Repo: "templates", Path: "go"},
		},
		{
			name: "shorthand",
			url:  "acme/templates",
			want: GitHubRef{Owner: "acme", Repo: "templates"},
		},
		{
			name: "https URL with .git suffix",
			url:  "https://github.com/acme/templates.git",
			want: GitHubRef{Owner: "acme", Repo: "templates"},
		},
		{name: "empty", url: "", wantErr: true},
		{name: "single component", url: "templates", wantErr: true},
		{name: "other host", url: "https://gitlab.com/acme/templates", wantErr: true},
		{name: "other ssh host", url: "git@gitlab.com:acme/templates.git", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGitHubURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseGitHubURL(%q) expected error, got %+v", tt.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGitHubURL(%q) unexpected error: %v", tt.url, err)
			}
			if *got != tt.want {
				t.Errorf("ParseGitHubURL(%q) = %+v, want %+v", tt.url, *got, tt.want)
			}
		})
	}
}

func TestGitHubRef_String(t *testing.T) {
	ref := GitHubRef{Owner: "acme", Repo: "templates", Ref: "v2", Path: "go"}
	if got, want := ref.String(), "github.com/acme/templates/go@v2"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := ref.CloneURL(), "https://github.com/acme/templates.git"; got != want {
		t.Errorf("CloneURL() = %q, want %q", got, want)
	}
}

func TestIsLocalPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "./templates", want: true},
		{path: "../templates", want: true},
		{path: "/srv/templates", want: true},
		{path: "~/templates", want: true},
		{path: "file:///srv/templates", want: true},
		{path: ".", want: true},
		{path: "acme/templates", want: false},
		{path: "https://github.com/acme/templates", want: false},
		{path: "git@github.com:acme/templates.git", want: false},
		{path: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsLocalPath(tt.path); got != tt.want {
				t.Errorf("IsLocalPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseFileURL(t *testing.T) {
	got, err := ParseFileURL("file:///srv/templates")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/srv/templates" {
		t.Errorf("ParseFileURL() = %q, want /srv/templates", got)
	}

	for _, bad := range []string{"file://remote-host/x", "https://example.com/x", "file://"} {
		if _, err := ParseFileURL(bad); err == nil {
			t.Errorf("ParseFileURL(%q) expected error", bad)
		}
	}
}

func TestSourceFetcher_Kind(t *testing.T) {
	f := NewSourceFetcher("")
	dir := t.TempDir()

	tests := []struct {
		name     string
		source   string
		useClone bool
		want     string
	}{
		{name: "relative local", source: "./templates", want: "local"},
		{name: "existing directory", source: dir, useClone: true, want: "local"},
		{name: "github shorthand", source: "acme/templates", want: "github"},
		{name: "github shorthand cloned", source: "acme/templates", useClone: true, want: "git"},
		{name: "github https", source: "https://github.com/acme/templates", want: "github"},
		{name: "other host", source: "https://gitlab.com/acme/templates.git", want: "git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Kind(tt.source, tt.useClone); got != tt.want {
				t.Errorf("Kind(%q, %v) = %q, want %q", tt.source, tt.useClone, got, tt.want)
			}
		})
	}
}
