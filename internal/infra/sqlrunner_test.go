package infra

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestExtractMarker(t *testing.T) {
	query := "--sql 7f4f5ccd-d122-435c-ad79-e59f8555fa94\nselect credits from accounts;"
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		t.Fatalf("extractMarker: %v", err)
	}
	if marker != "7f4f5ccd-d122-435c-ad79-e59f8555fa94" {
		t.Fatalf("marker = %q", marker)
	}
	if strings.Contains(trimmed, "--sql") {
		t.Fatalf("marker line not stripped: %q", trimmed)
	}
}

func TestExtractMarkerRejectsUnmarkedQueries(t *testing.T) {
	for _, query := range []string{
		"select 1;",
		"--sql not-a-uuid\nselect 1;",
		"",
	} {
		if _, _, err := extractMarker(query); err == nil {
			t.Fatalf("query %q should be rejected", query)
		}
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(pgx.ErrNoRows) {
		t.Fatal("pgx.ErrNoRows should match")
	}
	if IsNoRows(errors.New("other")) {
		t.Fatal("unrelated error should not match")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("23505 should match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key violation should not match")
	}
	if IsUniqueViolation(errors.New("other")) {
		t.Fatal("unrelated error should not match")
	}
}
