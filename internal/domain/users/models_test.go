package users

import "testing"

func TestFirstName(t *testing.T) {
	if got := (User{ID: 1, Name: "Ada Lovelace"}).FirstName(); got != "Ada" {
		t.Fatalf("expected Ada, got %s", got)
	}
	if got := (User{ID: 9, Name: "  "}).FirstName(); got != "User 9" {
		t.Fatalf("expected placeholder, got %s", got)
	}
}
