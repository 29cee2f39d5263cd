package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/pujasera/pos-backend/pkg/config"
	"github.com/pujasera/pos-backend/pkg/security"
)

func testHasher() *security.Hasher {
	return security.NewHasher(config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
}

func TestHashAndVerify(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash("kopi-susu-2024")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected hash prefix %q", hash)
	}

	ok, err := security.Verify("kopi-susu-2024", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, ok=%v err=%v", ok, err)
	}

	ok, err = security.Verify("teh-manis-2024", hash)
	if err != nil {
		t.Fatalf("Verify returned error for wrong password: %v", err)
	}
	if ok {
		t.Fatal("Verify accepted the wrong password")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	if _, err := testHasher().Hash("short"); !errors.Is(err, security.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"not-a-hash",
		"$argon2i$v=19$m=8,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=8,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8,t=1,p=1$c2FsdA$",
	} {
		if _, err := security.Verify("irrelevant", encoded); !errors.Is(err, security.ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", encoded, err)
		}
	}
}

func TestNewHasherClampsParams(t *testing.T) {
	p := security.NewHasher(config.PasswordConfig{}).Params()
	if p.Memory != 8 || p.Time != 1 || p.Parallelism != 1 || p.SaltLen != 8 || p.KeyLen != 16 {
		t.Fatalf("unexpected clamped params %+v", p)
	}
}
