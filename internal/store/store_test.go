package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestOpen_CreateIfNotExists(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, err := os.Stat(filepath.Join(dir, dbFileName)); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
}

func TestOpen_MissingDatabase(t *testing.T) {
	_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
	if err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestCreateScanRecord_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := &ScanRecord{
		Degree:        "danger",
		Reason:        "Credential phishing form on a forged domain.",
		ClientIP:      "203.0.113.7",
		RequestObject: `{"title":"Example Bank Login","url":"http://examp1e-bank.tk/login","description":"Verify your account now"}`,
	}

	if err := s.CreateScanRecord(ctx, record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.ID == "" {
		t.Error("expected an ID to be assigned")
	}

	if record.RequestTime.IsZero() {
		t.Error("expected a request time to be assigned at write")
	}

	got, err := s.GetScanRecord(ctx, record.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored record to be found")
	}

	if got.Degree != record.Degree {
		t.Errorf("expected degree %s, got %s", record.Degree, got.Degree)
	}

	if got.Reason != record.Reason {
		t.Errorf("expected reason %q, got %q", record.Reason, got.Reason)
	}

	if got.ClientIP != record.ClientIP {
		t.Errorf("expected client IP %s, got %s", record.ClientIP, got.ClientIP)
	}

	if got.RequestObject != record.RequestObject {
		t.Errorf("expected request object %q, got %q", record.RequestObject, got.RequestObject)
	}

	if got.UserID != "" {
		t.Errorf("expected no user link, got %s", got.UserID)
	}

	if !got.RequestTime.Equal(record.RequestTime) {
		t.Errorf("expected request time %v, got %v", record.RequestTime, got.RequestTime)
	}
}

func TestCreateScanRecord_DuplicateIDFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := &ScanRecord{ID: "fixed-id", Degree: "safe", Reason: "ok", RequestObject: "{}"}
	if err := s.CreateScanRecord(ctx, record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// records are append-only; a colliding ID must fail, never overwrite
	dup := &ScanRecord{ID: "fixed-id", Degree: "danger", Reason: "other", RequestObject: "{}"}
	if err := s.CreateScanRecord(ctx, dup); err == nil {
		t.Fatal("expected duplicate ID insert to fail")
	}

	got, err := s.GetScanRecord(ctx, "fixed-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Degree != "safe" {
		t.Errorf("expected original record to be untouched, got degree %s", got.Degree)
	}
}

func TestCreateScanRecord_WithUserLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &User{Email: "analyst@example.com", Name: "Analyst"}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := &ScanRecord{Degree: "caution", Reason: "shortened URL", RequestObject: "{}", UserID: user.ID}
	if err := s.CreateScanRecord(ctx, record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.GetScanRecord(ctx, record.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.UserID != user.ID {
		t.Errorf("expected user link %s, got %s", user.ID, got.UserID)
	}
}

func TestCountScanRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.CountScanRecords(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 records, got %d", count)
	}

	for range 3 {
		if err := s.CreateScanRecord(ctx, &ScanRecord{Degree: "safe", Reason: "ok", RequestObject: "{}"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	count, err = s.CountScanRecords(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 records, got %d", count)
	}
}

func TestListScanRecords_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := &ScanRecord{Degree: "safe", Reason: "ok", RequestObject: "{}", RequestTime: time.Now().UTC().Add(-time.Hour)}
	newer := &ScanRecord{Degree: "danger", Reason: "bad", RequestObject: "{}", RequestTime: time.Now().UTC()}

	if err := s.CreateScanRecord(ctx, older); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.CreateScanRecord(ctx, newer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := s.ListScanRecords(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].ID != newer.ID {
		t.Errorf("expected newest record first, got %s", records[0].ID)
	}
}

func TestCreateUser_AssignsID(t *testing.T) {
	s := newTestStore(t)

	user := &User{Email: "a@example.com"}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.ID == "" {
		t.Error("expected an ID to be assigned")
	}

	if user.CreatedAt.IsZero() {
		t.Error("expected a creation time to be assigned")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, &User{Email: "a@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.CreateUser(ctx, &User{Email: "a@example.com"})
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestFindUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &User{ID: "user-1", Email: "a@example.com", Name: "Ana"}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID, err := s.FindUserByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byID == nil || byID.Email != "a@example.com" {
		t.Errorf("unexpected user by ID: %+v", byID)
	}

	byEmail, err := s.FindUserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byEmail == nil || byEmail.ID != "user-1" {
		t.Errorf("unexpected user by email: %+v", byEmail)
	}

	missing, err := s.FindUserByID(ctx, "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown user, got %+v", missing)
	}
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if err := s.CreateUser(ctx, &User{Email: email}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}
