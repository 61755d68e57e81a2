package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tidy/internal/fault"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir, Read|Write)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
	if result.Err() != nil {
		t.Fatalf("passed result should have no error, got %v", result.Err())
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), Read)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !errors.Is(result.Err(), fault.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", result.Err())
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f, Read)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if !errors.Is(result.Err(), fault.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", result.Err())
	}
}

func TestCheckDirectoryAccess_ReadOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if r := CheckDirectoryAccess("test", dir, Read); !r.Passed {
		t.Fatalf("read check should pass: %s", r.Detail)
	}
	r := CheckDirectoryAccess("test", dir, Read|Write)
	if r.Passed || !errors.Is(r.Err(), fault.ErrAccess) {
		t.Fatalf("expected access failure, got %+v", r)
	}
}

func TestCheckCreatable(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		path      string
		collision bool
	}{
		{"existing dir", base, false},
		{"creatable path", filepath.Join(base, "a", "b"), false},
		{"the file itself", file, true},
		{"child of a file", filepath.Join(file, "sub"), true},
		{"grandchild of a file", filepath.Join(file, "sub", "deeper"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CheckCreatable("dest", tt.path)
			if !tt.collision {
				if !r.Passed {
					t.Fatalf("expected pass: %s", r.Detail)
				}
				return
			}
			if r.Passed || !errors.Is(r.Err(), fault.ErrCollision) {
				t.Fatalf("expected collision, got %+v", r)
			}
			if !strings.Contains(r.Detail, file+" is not a directory") {
				t.Fatalf("detail should name the blocking file: %s", r.Detail)
			}
		})
	}
}

func TestErrorsJoinsFailures(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	err := Errors([]Result{
		CheckDirectoryAccess("source", t.TempDir(), Read),
		CheckDirectoryAccess("other", missing, Read),
	})
	if !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected joined ErrNotFound, got %v", err)
	}
	if Errors([]Result{{Name: "ok", Passed: true}}) != nil {
		t.Fatal("expected nil for all passing")
	}
}
