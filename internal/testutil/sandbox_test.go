package testutil

import "testing"

func TestSandboxWriteReadRoundTrip(t *testing.T) {
	sb, err := NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	want := []byte("hello sandbox")
	if err := sb.WriteFile("greeting", want, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := sb.ReadFile("greeting")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSandboxCleanupRemovesRoot(t *testing.T) {
	sb, err := NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	if err := sb.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := sb.ReadFile("anything"); err == nil {
		t.Fatalf("expected error reading from removed sandbox")
	}
}
