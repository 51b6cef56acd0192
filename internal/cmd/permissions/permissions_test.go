package permissions

import (
	"testing"
)

func TestNewGrantCmd(t *testing.T) {
	cmd := NewGrantCmd()

	if cmd == nil {
		t.Fatal("Expected non-nil command")
	}

	if cmd.Use != "grant [no options!]" {
		t.Errorf("Expected Use to be 'grant [no options!]', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Expected non-empty Short description")
	}

	if cmd.Long == "" {
		t.Error("Expected non-empty Long description")
	}

	if cmd.Example == "" {
		t.Error("Expected non-empty Example")
	}

	flags := cmd.Flags()
	for _, name := range []string{"server", "api-version", "organization", "project", "resource-type", "resource-id", "pipeline-id", "token", "config", "strict"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected %q flag to exist", name)
		}
	}

	if flags.Lookup("server").DefValue != "dev.azure.com" {
		t.Errorf("Expected server default 'dev.azure.com', got %q", flags.Lookup("server").DefValue)
	}

	if flags.Lookup("api-version").DefValue != "7.1-preview.1" {
		t.Errorf("Expected api-version default '7.1-preview.1', got %q", flags.Lookup("api-version").DefValue)
	}
}

func TestNewRevokeCmd(t *testing.T) {
	cmd := NewRevokeCmd()

	if cmd == nil {
		t.Fatal("Expected non-nil command")
	}

	if cmd.Use != "revoke [no options!]" {
		t.Errorf("Expected Use to be 'revoke [no options!]', got %q", cmd.Use)
	}

	flags := cmd.Flags()
	for _, name := range []string{"server", "organization", "project", "resource-type", "resource-id", "pipeline-id", "token", "strict"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected %q flag to exist", name)
		}
	}
}

func TestNewShowCmd(t *testing.T) {
	cmd := NewShowCmd()

	if cmd == nil {
		t.Fatal("Expected non-nil command")
	}

	if cmd.Use != "show [no options!]" {
		t.Errorf("Expected Use to be 'show [no options!]', got %q", cmd.Use)
	}

	flags := cmd.Flags()
	for _, name := range []string{"server", "api-version", "organization", "project", "resource-type", "resource-id", "token", "config"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected %q flag to exist", name)
		}
	}

	if flags.Lookup("pipeline-id") != nil {
		t.Error("Expected show command to have no pipeline-id flag")
	}

	if flags.Lookup("strict") != nil {
		t.Error("Expected show command to have no strict flag")
	}
}

func TestValidateOptions(t *testing.T) {
	saved := options
	t.Cleanup(func() { options = saved })

	valid := PermissionOptions{
		Server:       "dev.azure.com",
		Organization: "myorg",
		Project:      "myproject",
		ResourceType: "endpoint",
		ResourceID:   "ep-1",
		PipelineID:   "42",
	}

	tests := []struct {
		name      string
		mutate    func(o *PermissionOptions)
		wantError bool
	}{
		{
			name:   "valid options",
			mutate: func(o *PermissionOptions) {},
		},
		{
			name:   "explicit token",
			mutate: func(o *PermissionOptions) { o.Token = "abcdef0123456789" },
		},
		{
			name:   "server with explicit scheme",
			mutate: func(o *PermissionOptions) { o.Server = "http://localhost:8080" },
		},
		{
			name:      "garbage server",
			mutate:    func(o *PermissionOptions) { o.Server = "ht!tp://invalid" },
			wantError: true,
		},
		{
			name:      "placeholder token",
			mutate:    func(o *PermissionOptions) { o.Token = "xxxxxxxxxxx" },
			wantError: true,
		},
		{
			name:      "whitespace token",
			mutate:    func(o *PermissionOptions) { o.Token = "   " },
			wantError: true,
		},
		{
			name:      "empty organization",
			mutate:    func(o *PermissionOptions) { o.Organization = "" },
			wantError: true,
		},
		{
			name:      "blank resource id",
			mutate:    func(o *PermissionOptions) { o.ResourceID = "  " },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options = valid
			tt.mutate(&options)

			err := validateOptions()
			if tt.wantError && err == nil {
				t.Errorf("validateOptions() expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("validateOptions() unexpected error = %v", err)
			}
		})
	}
}
