package models

import "testing"

func TestParseStatusNormalizesCase(t *testing.T) {
	cases := map[string]Status{
		"REQUESTED": StatusRequested,
		"requested": StatusRequested,
		" Accepted ": StatusAccepted,
		"completed": StatusCompleted,
		"CANCELLED": StatusCancelled,
		"canceled":  StatusCancelled,
		"weird":     StatusUnknown,
		"":          StatusUnknown,
	}
	for raw, want := range cases {
		if got := ParseStatus(raw); got != want {
			t.Errorf("ParseStatus(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusRequested.Terminal() || StatusAccepted.Terminal() {
		t.Fatal("open statuses must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Fatal("completed/cancelled must be terminal")
	}
}

func TestSortOffersByPrice(t *testing.T) {
	offers := []Offer{
		{ID: "1", Price: 10, Driver: Driver{Rating: 4.5}},
		{ID: "2", Price: 8, Driver: Driver{Rating: 4.9}},
	}
	SortOffersByPrice(offers)
	if offers[0].ID != "2" || offers[1].ID != "1" {
		t.Fatalf("expected [2 1], got [%s %s]", offers[0].ID, offers[1].ID)
	}
}

func TestSortOrdersDiverge(t *testing.T) {
	// counter-example where price and rating order differ
	offers := []Offer{
		{ID: "1", Price: 5, Driver: Driver{Rating: 3}},
		{ID: "2", Price: 9, Driver: Driver{Rating: 5}},
	}
	SortOffersByPrice(offers)
	if offers[0].ID != "1" || offers[1].ID != "2" {
		t.Fatalf("price order: expected [1 2], got [%s %s]", offers[0].ID, offers[1].ID)
	}
	SortOffersByRating(offers)
	if offers[0].ID != "2" || offers[1].ID != "1" {
		t.Fatalf("rating order: expected [2 1], got [%s %s]", offers[0].ID, offers[1].ID)
	}
}

func TestSortsAreStableForTies(t *testing.T) {
	offers := []Offer{
		{ID: "a", Price: 7, Driver: Driver{Rating: 4}},
		{ID: "b", Price: 7, Driver: Driver{Rating: 4}},
		{ID: "c", Price: 7, Driver: Driver{Rating: 4}},
	}
	SortOffersByPrice(offers)
	if offers[0].ID != "a" || offers[1].ID != "b" || offers[2].ID != "c" {
		t.Fatalf("price sort reordered ties: %v %v %v", offers[0].ID, offers[1].ID, offers[2].ID)
	}
	SortOffersByRating(offers)
	if offers[0].ID != "a" || offers[1].ID != "b" || offers[2].ID != "c" {
		t.Fatalf("rating sort reordered ties: %v %v %v", offers[0].ID, offers[1].ID, offers[2].ID)
	}
}
