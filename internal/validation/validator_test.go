package validation

import (
	"testing"

	"github.com/veranemoloko/mc-fetch/internal/domain"
)

func TestVersionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "release",
			input:   "1.21.7",
			wantErr: false,
		},
		{
			name:    "snapshot",
			input:   "25w31a",
			wantErr: false,
		},
		{
			name:    "historical",
			input:   "b1.7.3",
			wantErr: false,
		},
		{
			name:    "loader profile id",
			input:   "fabric-loader-0.16.14-1.21.7",
			wantErr: false,
		},
		{
			name:    "pre-release with space",
			input:   "1.14 Pre-Release 1",
			wantErr: false,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "path separator",
			input:   "../etc",
			wantErr: true,
		},
		{
			name:    "windows separator",
			input:   `a\b`,
			wantErr: true,
		},
		{
			name:    "dot dot",
			input:   "..",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VersionID(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantErr bool
	}{
		{
			name:    "install request",
			input:   domain.InstallRequest{Version: "1.21.7", Name: "my-pack", Kind: domain.KindRelease},
			wantErr: false,
		},
		{
			name:    "install request bad kind",
			input:   domain.InstallRequest{Version: "1.21.7", Kind: "beta"},
			wantErr: true,
		},
		{
			name:    "install request bad name",
			input:   domain.InstallRequest{Version: "1.21.7", Name: "a/b"},
			wantErr: true,
		},
		{
			name:    "loader request",
			input:   domain.LoaderRequest{Family: domain.LoaderNeoForge, GameVersion: "1.21.7", LoaderVersion: "21.7.25-beta"},
			wantErr: false,
		},
		{
			name:    "loader request unknown family",
			input:   domain.LoaderRequest{Family: "rift", GameVersion: "1.13"},
			wantErr: true,
		},
		{
			name:    "loader request bad loader version",
			input:   domain.LoaderRequest{Family: domain.LoaderFabric, GameVersion: "1.21.7", LoaderVersion: "../x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
