package capability

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
)

func TestSchemeCatalogFindsIrrigationSubsidy(t *testing.T) {
	t.Parallel()

	catalog := NewSchemeCatalog()
	res, err := catalog.Search(context.Background(), contractx.SchemeRequest{Query: "subsidy for drip irrigation"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if res.SchemeName != "Drip Irrigation Subsidy" {
		t.Fatalf("scheme = %q, want Drip Irrigation Subsidy", res.SchemeName)
	}
	if len(res.Benefits) == 0 {
		t.Fatal("benefits must not be empty")
	}
}

func TestSchemeCatalogFindsIncomeSupport(t *testing.T) {
	t.Parallel()

	catalog := NewSchemeCatalog()
	res, err := catalog.Search(context.Background(), contractx.SchemeRequest{Query: "pm kisan income support"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if res.SchemeName != "PM-KISAN" {
		t.Fatalf("scheme = %q, want PM-KISAN", res.SchemeName)
	}
	if res.ApplicationLink == "" {
		t.Fatal("PM-KISAN must carry an application link")
	}
}

func TestSchemeCatalogGenericQueryReturnsFlagship(t *testing.T) {
	t.Parallel()

	catalog := NewSchemeCatalog()
	res, err := catalog.Search(context.Background(), contractx.SchemeRequest{Query: "government help please"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if res.SchemeName != "PM-KISAN" {
		t.Fatalf("scheme = %q, want flagship fallback", res.SchemeName)
	}
}

func TestSchemeCatalogEmptyQuery(t *testing.T) {
	t.Parallel()

	catalog := NewSchemeCatalog()
	if _, err := catalog.Search(context.Background(), contractx.SchemeRequest{Query: "   "}); !errors.Is(err, contractx.ErrCapability) {
		t.Fatalf("error = %v, want ErrCapability", err)
	}
}
