package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/shiprec/internal/exchange"
	"github.com/JonMunkholm/shiprec/internal/store/memory"
)

func TestMain(m *testing.M) {
	Register(Adapt(exchange.Countries, 10))
	Register(Adapt(exchange.Ports, 20))
	Register(Adapt(exchange.Operators, 30))
	Register(Adapt(exchange.VesselTypes, 40))
	Register(Adapt(exchange.Locations, 50))
	Register(Adapt(exchange.Vessels, 60))
	Register(Adapt(exchange.Voyages, 70))
	Register(Adapt(exchange.Sightings, 80))
	os.Exit(m.Run())
}

func TestRegistry_Get(t *testing.T) {
	k, ok := Get("ports")
	if !ok {
		t.Fatal("ports not registered")
	}
	if k.Label != "Port" {
		t.Errorf("Label = %q, want %q", k.Label, "Port")
	}
	if len(k.Columns) != 2 || k.Columns[0] != "Code" || k.Columns[1] != "Name" {
		t.Errorf("Columns = %v, want [Code Name]", k.Columns)
	}

	if _, ok := Get("whales"); ok {
		t.Error("Get(whales) should not be found")
	}
}

func TestRegistry_Order(t *testing.T) {
	got := Keys()
	want := []string{"countries", "ports", "operators", "vessel-types", "locations", "vessels", "voyages", "sightings"}

	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if KindCount() != len(want) {
		t.Errorf("KindCount() = %d, want %d", KindCount(), len(want))
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register of a duplicate key should panic")
		}
	}()
	Register(Adapt(exchange.Countries, 99))
}

func TestAdapt_ExportFile(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if _, err := s.Countries.Add(ctx, "GB", "United Kingdom"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	k, _ := Get("countries")
	path := filepath.Join(t.TempDir(), "countries.csv")

	var counts []int
	err := k.ExportFile(ctx, s, path, Observer{OnRecord: func(n int) { counts = append(counts, n) }})
	if err != nil {
		t.Fatalf("ExportFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "\"Code\",\"Name\"\n\"GB\",\"United Kingdom\"\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
	if len(counts) != 1 || counts[0] != 1 {
		t.Errorf("counts = %v, want [1]", counts)
	}
}
