package policy_test

import (
	"testing"

	"github.com/jdelaire/sentinelbot/core/policy"
)

func TestAllowPrivateAdmin(t *testing.T) {
	p := policy.New([]int64{42})
	if !p.Allow(42, 42) {
		t.Error("Allow(42, 42) = false, want true")
	}
}

func TestRejectGroupChat(t *testing.T) {
	p := policy.New([]int64{42})
	if p.Allow(-100123, 42) {
		t.Error("admin in group chat allowed, want rejected")
	}
}

func TestRejectUnknownUser(t *testing.T) {
	p := policy.New([]int64{42})
	if p.Allow(7, 7) {
		t.Error("non-admin allowed, want rejected")
	}
}

func TestRejectMissingSender(t *testing.T) {
	p := policy.New([]int64{0})
	if p.Allow(0, 0) {
		t.Error("zero sender allowed, want rejected")
	}
}

func TestEmptyPolicyRejectsAll(t *testing.T) {
	p := policy.New(nil)
	if p.Len() != 0 {
		t.Fatalf("Len = %d, want 0", p.Len())
	}
	if p.Allow(42, 42) {
		t.Error("empty policy allowed a user")
	}
}
