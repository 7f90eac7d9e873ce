package login

import (
	"testing"
	"time"
)

type fakeAccounts struct {
	banned      map[string]bool
	valid       map[string]string
	premium     map[string]bool
	chars       map[string][]CharacterSummary
	createCalls int
}

func (f *fakeAccounts) Authenticate(account, password string) (bool, bool, bool, bool, error) {
	want, ok := f.valid[account]
	if !ok || want != password {
		return false, false, false, false, nil
	}
	return true, f.premium[account], false, false, nil
}

func (f *fakeAccounts) IsBanned(account string) (bool, error) {
	return f.banned[account], nil
}

func (f *fakeAccounts) Characters(account string) ([]CharacterSummary, error) {
	return f.chars[account], nil
}

func (f *fakeAccounts) AutoCreate(account, password string) error {
	f.createCalls++
	if f.valid == nil {
		f.valid = map[string]string{}
	}
	f.valid[account] = password
	return nil
}

func newTestFlow(threshold int) (*Flow, *fakeAccounts) {
	acc := &fakeAccounts{
		banned: map[string]bool{"banned1": true},
		valid:  map[string]string{"good": "pw"},
		chars:  map[string][]CharacterSummary{"good": {{Name: "Hero"}}},
	}
	reg := NewSelectionRegistry(time.Minute)
	active := 0
	f := NewFlow(Config{
		WaitlistThreshold: threshold,
		WorldName:         "Testera",
		WorldAddress:      "0.0.0.0:7172",
	}, acc, reg, func() int { return active })
	return f, acc
}

func TestAttemptSuccessPutsSelection(t *testing.T) {
	f, _ := newTestFlow(100)
	res, _, err := f.Attempt("203.0.113.5", "good", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != ResultSuccess {
		t.Fatalf("expected success, got %v", res)
	}
	sel, ok := f.registry.Take("203.0.113.5")
	if !ok {
		t.Fatalf("expected selection stored")
	}
	if sel.Characters[0].WorldAddress != "203.0.113.5:7172" {
		t.Fatalf("expected resolved world address, got %q", sel.Characters[0].WorldAddress)
	}
}

func TestAttemptBannedAccount(t *testing.T) {
	f, _ := newTestFlow(100)
	res, _, err := f.Attempt("203.0.113.5", "banned1", "whatever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != ResultAccountBanned {
		t.Fatalf("expected banned, got %v", res)
	}
}

func TestAttemptBadCredentialsWithoutAutoCreate(t *testing.T) {
	f, _ := newTestFlow(100)
	res, _, err := f.Attempt("203.0.113.5", "nope", "wrong")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != ResultAccountNotAssigned {
		t.Fatalf("expected account not assigned, got %v", res)
	}
}

func TestAttemptWaitlisted(t *testing.T) {
	f, _ := newTestFlow(0)
	res, pos, err := f.Attempt("203.0.113.5", "good", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != ResultWaitlist {
		t.Fatalf("expected waitlist, got %v", res)
	}
	if pos != 1 {
		t.Fatalf("expected waitlist position 1, got %d", pos)
	}
}

func TestResolveWorldAddressSubstitutesWildcard(t *testing.T) {
	got := ResolveWorldAddress("0.0.0.0:7172", "198.51.100.9")
	if got != "198.51.100.9:7172" {
		t.Fatalf("got %q", got)
	}
	got = ResolveWorldAddress("play.example.com:7172", "198.51.100.9")
	if got != "play.example.com:7172" {
		t.Fatalf("expected unchanged host, got %q", got)
	}
}

func TestSelectionRegistryTTLExpiry(t *testing.T) {
	reg := NewSelectionRegistry(time.Second)
	frozen := time.Now()
	reg.now = func() time.Time { return frozen }
	reg.Put("1.2.3.4", LoginSelection{Account: "a"})

	frozen = frozen.Add(2 * time.Second)
	if _, ok := reg.Take("1.2.3.4"); ok {
		t.Fatalf("expected expired selection to be rejected")
	}
}

func TestSelectionRegistrySweepRemovesStale(t *testing.T) {
	reg := NewSelectionRegistry(time.Second)
	frozen := time.Now()
	reg.now = func() time.Time { return frozen }
	reg.Put("1.2.3.4", LoginSelection{Account: "a"})

	frozen = frozen.Add(2 * time.Second)
	reg.Sweep()
	if _, ok := reg.m["1.2.3.4"]; ok {
		t.Fatalf("expected sweep to remove stale entry")
	}
}
