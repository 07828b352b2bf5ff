package astro

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeBirthMoscowWinter(t *testing.T) {
	// зимой Москва была UTC+3
	got, err := NormalizeBirth("15.01.1990", "14:30", "Europe/Moscow")
	if err != nil {
		t.Fatalf("NormalizeBirth: %v", err)
	}
	want := time.Date(1990, 1, 15, 11, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeBirthUTC(t *testing.T) {
	got, err := NormalizeBirth("01.01.2000", "00:00", "UTC")
	if err != nil {
		t.Fatalf("NormalizeBirth: %v", err)
	}
	want := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeBirthBadTimezone(t *testing.T) {
	_, err := NormalizeBirth("15.05.1990", "14:30", "Mars/Olympus")
	if !errors.Is(err, ErrBadTimezone) {
		t.Errorf("err = %v, want ErrBadTimezone", err)
	}
}

func TestNormalizeBirthBadInput(t *testing.T) {
	if _, err := NormalizeBirth("1990-05-15", "14:30", "UTC"); err == nil {
		t.Error("expected error for non-canonical date")
	}
	if _, err := NormalizeBirth("15.05.1990", "half past two", "UTC"); err == nil {
		t.Error("expected error for non-canonical time")
	}
}
