package database

import (
	"fmt"
	"testing"
)

func TestDMRUser_FullName(t *testing.T) {
	tests := []struct {
		name     string
		user     DMRUser
		expected string
	}{
		{"Both names present", DMRUser{FirstName: "John", LastName: "Doe"}, "John Doe"},
		{"Only first name", DMRUser{FirstName: "John"}, "John"},
		{"Only last name", DMRUser{LastName: "Doe"}, "Doe"},
		{"No names", DMRUser{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.user.FullName(); result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestDMRUser_Location(t *testing.T) {
	tests := []struct {
		name     string
		user     DMRUser
		expected string
	}{
		{"All fields present", DMRUser{City: "Seattle", State: "WA", Country: "USA"}, "Seattle, WA, USA"},
		{"City and state only", DMRUser{City: "Seattle", State: "WA"}, "Seattle, WA"},
		{"Country only", DMRUser{Country: "USA"}, "USA"},
		{"No location", DMRUser{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.user.Location(); result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestDMRUserRepository_UpsertBatchAndCallsign(t *testing.T) {
	repo := NewDMRUserRepository(openTestDB(t).GetDB())

	users := make([]DMRUser, 25)
	for i := range users {
		users[i] = DMRUser{RadioID: uint32(3120000 + i), Callsign: fmt.Sprintf("W1A%02d", i)}
	}
	if err := repo.UpsertBatch(users, 10); err != nil {
		t.Fatalf("Failed to upsert users: %v", err)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 25 {
		t.Errorf("Expected 25 users, got %d", count)
	}

	// Saving again updates in place
	users[3].Callsign = "K7ABC"
	if err := repo.UpsertBatch(users[3:4], 0); err != nil {
		t.Fatalf("Failed to update user: %v", err)
	}
	if got := repo.Callsign(3120003); got != "K7ABC" {
		t.Errorf("Expected callsign K7ABC, got %q", got)
	}
	if got := repo.Callsign(1); got != "" {
		t.Errorf("Expected empty callsign for unknown id, got %q", got)
	}

	if count, _ := repo.Count(); count != 25 {
		t.Errorf("Expected 25 users after update, got %d", count)
	}
}

func TestDMRUserRepository_UpsertBatchEmpty(t *testing.T) {
	repo := NewDMRUserRepository(openTestDB(t).GetDB())
	if err := repo.UpsertBatch(nil, 10); err != nil {
		t.Errorf("Expected nil error for empty batch, got %v", err)
	}
}
