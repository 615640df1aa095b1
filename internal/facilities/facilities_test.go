package facilities

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInMemoryCRUD(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &Facility{Name: "Centro Norte", Municipality: "Mixco", Available: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("created = %+v", created)
	}

	created.Capacity = 80
	if err := repo.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Capacity != 80 {
		t.Fatalf("capacity = %d, want 80", got.Capacity)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrNotFound)
	}
}

func TestListFiltersByMunicipality(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	if err := SeedDemo(ctx, repo); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("listed %d facilities, want 3", len(all))
	}

	mixco, err := repo.List(ctx, "mixco")
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(mixco) != 1 || mixco[0].Municipality != "Mixco" {
		t.Fatalf("filtered = %v", mixco)
	}
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	if err := SeedDemo(ctx, repo); err != nil {
		t.Fatalf("first SeedDemo: %v", err)
	}
	if err := SeedDemo(ctx, repo); err != nil {
		t.Fatalf("second SeedDemo: %v", err)
	}
	all, _ := repo.List(ctx, "")
	if len(all) != 3 {
		t.Fatalf("seeded twice produced %d facilities", len(all))
	}
}

func TestHandlerCreateValidatesName(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/facilities", strings.NewReader(`{"type":"hospital"}`))
	rec := httptest.NewRecorder()
	h.AdminCreate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/facilities", strings.NewReader(`{"name":"Centro Sur"}`))
	rec = httptest.NewRecorder()
	h.AdminCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}
