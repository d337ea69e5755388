// StemQuest - Student STEM Challenge Platform
// Copyright 2026 StemQuest Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stemquest/stemquest

package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-passphrase" {
		t.Fatal("hash equals plaintext")
	}

	if err := CheckPassword(hash, "s3cret-passphrase"); err != nil {
		t.Errorf("CheckPassword with correct password: %v", err)
	}
	if err := CheckPassword(hash, "wrong-password"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("CheckPassword with wrong password = %v, want ErrPasswordMismatch", err)
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	// Out-of-range costs fall back to the default rather than erroring.
	hash, err := HashPassword("another-passphrase", 99)
	if err != nil {
		t.Fatalf("HashPassword with invalid cost: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost: %v", err)
	}
	if cost != DefaultBcryptCost {
		t.Errorf("cost = %d, want %d", cost, DefaultBcryptCost)
	}
}

func TestCheckPasswordBadHash(t *testing.T) {
	err := CheckPassword("not-a-bcrypt-hash", "anything")
	if err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if errors.Is(err, ErrPasswordMismatch) {
		t.Error("malformed hash should not report a plain mismatch")
	}
	if !strings.Contains(err.Error(), "bcrypt") {
		t.Errorf("unexpected error: %v", err)
	}
}
