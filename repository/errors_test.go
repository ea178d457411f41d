package repository

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsDuplicateEntry(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Error 1062 (23000): Duplicate entry '3-7' for key 'uq_playlist_song'"), true},
		{errors.New("Duplicate entry 'alice' for key 'users.username'"), true},
		{errors.New("Error 1452 (23000): Cannot add or update a child row"), false},
		{errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		if got := isDuplicateEntry(tc.err); got != tc.want {
			t.Errorf("isDuplicateEntry(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Error 1452 (23000): Cannot add or update a child row: a foreign key constraint fails"), true},
		{errors.New("Error 1451 (23000): Cannot delete or update a parent row"), true},
		{errors.New("Error 1062 (23000): Duplicate entry"), false},
		{errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		if got := isForeignKeyViolation(tc.err); got != tc.want {
			t.Errorf("isForeignKeyViolation(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestIsNotFoundMatchesWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("playlist 7: %w", ErrNotFound)
	if !isNotFound(wrapped) {
		t.Error("wrapped ErrNotFound not recognized")
	}
	if isNotFound(fmt.Errorf("playlist 7: %w", ErrConflict)) {
		t.Error("ErrConflict misreported as not found")
	}
	if isNotFound(nil) {
		t.Error("nil misreported as not found")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrValidation, ErrNotFound, ErrConflict,
		ErrMissingReference, ErrIntegrity, ErrDuplicateUser,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v matches %v", a, b)
			}
		}
	}
}
