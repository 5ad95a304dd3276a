package gitremote

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Remote
		wantErr bool
	}{
		{
			name: "scp-style github remote",
			raw:  "git@github.com:org/repo.git",
			want: Remote{Host: "", Repository: "org/repo", Scheme: "https"},
		},
		{
			name: "https github remote",
			raw:  "https://github.com/org/repo.git",
			want: Remote{Host: "", Repository: "org/repo", Scheme: "https"},
		},
		{
			name: "https enterprise remote",
			raw:  "https://ghe.example.com/org/repo.git",
			want: Remote{Host: "ghe.example.com", Repository: "org/repo", Scheme: "https"},
		},
		{
			name: "http scheme is preserved",
			raw:  "http://ghe.example.com/org/repo",
			want: Remote{Host: "ghe.example.com", Repository: "org/repo", Scheme: "http"},
		},
		{
			name: "ssh scheme maps to https",
			raw:  "ssh://git@ghe.example.com/org/repo.git",
			want: Remote{Host: "ghe.example.com", Repository: "org/repo", Scheme: "https"},
		},
		{
			name: "scp-style enterprise remote",
			raw:  "git@ghe.example.com:team/project.git",
			want: Remote{Host: "ghe.example.com", Repository: "team/project", Scheme: "https"},
		},
		{
			name: "no .git suffix",
			raw:  "git@github.com:org/repo",
			want: Remote{Host: "", Repository: "org/repo", Scheme: "https"},
		},
		{
			name:    "missing repository path",
			raw:     "https://github.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Host != tt.want.Host {
				t.Errorf("Host = %q, want %q", got.Host, tt.want.Host)
			}
			if got.Repository != tt.want.Repository {
				t.Errorf("Repository = %q, want %q", got.Repository, tt.want.Repository)
			}
			if got.Scheme != tt.want.Scheme {
				t.Errorf("Scheme = %q, want %q", got.Scheme, tt.want.Scheme)
			}
		})
	}
}

func TestRemoteHelpers(t *testing.T) {
	public, err := Parse("git@github.com:org/repo.git")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if public.IsEnterprise() {
		t.Error("github.com remote should not be enterprise")
	}
	if got := public.APIEndpoint(); got != "https://api.github.com/" {
		t.Errorf("APIEndpoint() = %q", got)
	}
	if got := public.Owner(); got != "org" {
		t.Errorf("Owner() = %q", got)
	}
	if got := public.Name(); got != "repo" {
		t.Errorf("Name() = %q", got)
	}
	if got := public.WebHost(); got != "github.com" {
		t.Errorf("WebHost() = %q", got)
	}

	enterprise, err := Parse("https://ghe.example.com/org/repo.git")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !enterprise.IsEnterprise() {
		t.Error("ghe remote should be enterprise")
	}
	if got := enterprise.APIEndpoint(); got != "https://ghe.example.com/api/v3/" {
		t.Errorf("APIEndpoint() = %q", got)
	}
}
