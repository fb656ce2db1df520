package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/zkauth/internal/common"
)

func TestFileSaltStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "salts.json")
	s := NewFileSaltStore(path)

	salt := []byte{0x01, 0x02, 0xab, 0xcd}
	if err := s.Save("alice", salt); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, salt) {
		t.Fatalf("got %x, want %x", got, salt)
	}
}

func TestFileSaltStore_LoadUnknownUser(t *testing.T) {
	s := NewFileSaltStore(filepath.Join(t.TempDir(), "salts.json"))
	_, err := s.Load("nobody")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestFileSaltStore_SavePreservesOtherEntries(t *testing.T) {
	s := NewFileSaltStore(filepath.Join(t.TempDir(), "salts.json"))

	if err := s.Save("alice", []byte{0x01}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save("bob", []byte{0x02}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("alice")
	if err != nil || !bytes.Equal(got, []byte{0x01}) {
		t.Fatalf("alice entry lost: got %x err=%v", got, err)
	}
}

func TestFileSaltStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salts.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFileSaltStore(path)
	if _, err := s.Load("alice"); err == nil {
		t.Fatal("expected error on corrupt store")
	}
}
