package policy

import (
	"errors"
	"testing"
)

func testStore() *Store {
	return NewStore(
		[]string{"ls", "git", "nmap"},
		[]string{"rm", "dd", "hydra"},
		[]string{"nmap", "tcpdump"},
	)
}

func TestLeadingToken(t *testing.T) {
	cases := []struct {
		name    string
		command string
		want    string
		wantErr error
	}{
		{"simple", "ls -la", "ls", nil},
		{"no args", "git", "git", nil},
		{"absolute path", "/usr/bin/nmap -sS 10.0.0.0/24", "nmap", nil},
		{"relative path", "./scripts/deploy.sh --prod", "deploy.sh", nil},
		{"quoted argument", `grep "hello world" file.txt`, "grep", nil},
		{"leading whitespace", "   ls", "ls", nil},
		{"unbalanced quote falls back", `echo "unterminated`, "echo", nil},
		{"empty", "", "", ErrEmptyCommand},
		{"whitespace only", "   \t  ", "", ErrEmptyCommand},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LeadingToken(tc.command)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("LeadingToken(%q) err = %v, want %v", tc.command, err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("LeadingToken(%q) = %q, want %q", tc.command, got, tc.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	store := testStore()

	cases := []struct {
		name    string
		command string
		want    Classification
	}{
		{"safe", "ls -la /tmp", ClassSafe},
		{"dangerous", "rm -rf /", ClassDangerous},
		{"unknown", "frobnicate --all", ClassUnknown},
		{"path stripped", "/bin/rm file", ClassDangerous},
		{"case insensitive", "LS", ClassSafe},
		{"arguments ignored", "ls rm dd", ClassSafe},
		{"tool name inside argument does not match", "cat rm.txt", ClassUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.Classify(tc.command)
			if err != nil {
				t.Fatalf("Classify(%q): %v", tc.command, err)
			}
			if got != tc.want {
				t.Fatalf("Classify(%q) = %v, want %v", tc.command, got, tc.want)
			}
		})
	}
}

func TestClassify_EmptyCommand(t *testing.T) {
	store := testStore()
	if _, err := store.Classify("   "); !errors.Is(err, ErrEmptyCommand) {
		t.Fatalf("expected ErrEmptyCommand, got %v", err)
	}
}

func TestClassify_SafeWinsOverDangerous(t *testing.T) {
	store := NewStore([]string{"tool"}, []string{"tool"}, nil)
	got, err := store.Classify("tool --version")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got != ClassSafe {
		t.Fatalf("token in both lists should classify safe, got %v", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	store := testStore()
	first, err := store.Classify("nmap -sV host")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := store.Classify("nmap -sV host")
		if err != nil || got != first {
			t.Fatalf("classification changed on repeat: %v (%v)", got, err)
		}
	}
}

func TestIsBackgroundable(t *testing.T) {
	store := testStore()

	if !store.IsBackgroundable("nmap -sS 10.0.0.0/24") {
		t.Error("nmap should be backgroundable")
	}
	if !store.IsBackgroundable("/usr/sbin/tcpdump -i eth0") {
		t.Error("path-prefixed tcpdump should be backgroundable")
	}
	if store.IsBackgroundable("ls -la") {
		t.Error("ls should not be backgroundable")
	}
	if store.IsBackgroundable("") {
		t.Error("empty command should not be backgroundable")
	}
}

func TestStore_Counts(t *testing.T) {
	store := testStore()
	if got := store.SafeCount(); got != 3 {
		t.Errorf("SafeCount = %d, want 3", got)
	}
	if got := store.DangerousCount(); got != 3 {
		t.Errorf("DangerousCount = %d, want 3", got)
	}
	if got := store.BackgroundableCount(); got != 2 {
		t.Errorf("BackgroundableCount = %d, want 2", got)
	}
}

func TestNewStore_NormalizesNames(t *testing.T) {
	store := NewStore([]string{" LS ", "ls"}, []string{"RM"}, nil)
	if store.SafeCount() != 1 {
		t.Fatalf("duplicate names should collapse, got %d", store.SafeCount())
	}
	got, err := store.Classify("rm -rf x")
	if err != nil || got != ClassDangerous {
		t.Fatalf("uppercase list entry should match lowercase token, got %v (%v)", got, err)
	}
}
