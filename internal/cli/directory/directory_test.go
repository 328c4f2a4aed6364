package directory

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/models"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	ctx := cli.New(filepath.Join(t.TempDir(), "carelog.db"), "")
	ctx.Out = &out
	if err := ctx.Init(context.Background()); err != nil {
		t.Fatalf("failed to init: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx, &out
}

func TestAddListDelete(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		add      interface{ Run(*cli.Context) error }
		list     interface{ Run(*cli.Context) error }
		wantLine string
		firstID  func(*cli.Context) (string, error)
		deleteFn func(id string) interface{ Run(*cli.Context) error }
	}{
		{
			name:     "contact",
			kind:     KindContact,
			add:      &ContactAddCmd{Name: "Ada", Phone: "555-0100", Relationship: "sister"},
			list:     &ContactListCmd{},
			wantLine: "Ada  555-0100 (sister)",
			firstID: func(ctx *cli.Context) (string, error) {
				items, err := ctx.Book.Contacts.List(context.Background())
				if err != nil || len(items) == 0 {
					return "", err
				}
				return items[0].ID, nil
			},
			deleteFn: func(id string) interface{ Run(*cli.Context) error } {
				return &ContactDeleteCmd{ID: id}
			},
		},
		{
			name:     "doctor",
			kind:     KindDoctor,
			add:      &DoctorAddCmd{Name: "Dr. Who", Specialty: "cardiology"},
			list:     &DoctorListCmd{},
			wantLine: "Dr. Who (cardiology)",
			firstID: func(ctx *cli.Context) (string, error) {
				items, err := ctx.Book.Doctors.List(context.Background())
				if err != nil || len(items) == 0 {
					return "", err
				}
				return items[0].ID, nil
			},
			deleteFn: func(id string) interface{ Run(*cli.Context) error } {
				return &DoctorDeleteCmd{ID: id}
			},
		},
		{
			name:     "insurance",
			kind:     KindInsurance,
			add:      &InsuranceAddCmd{Provider: "Acme Health", PolicyNumber: "P-1", GroupNumber: "G-9"},
			list:     &InsuranceListCmd{},
			wantLine: "Acme Health  policy P-1, group G-9",
			firstID: func(ctx *cli.Context) (string, error) {
				items, err := ctx.Book.Insurance.List(context.Background())
				if err != nil || len(items) == 0 {
					return "", err
				}
				return items[0].ID, nil
			},
			deleteFn: func(id string) interface{ Run(*cli.Context) error } {
				return &InsuranceDeleteCmd{ID: id}
			},
		},
		{
			name:     "pharmacy",
			kind:     KindPharmacy,
			add:      &PharmacyAddCmd{Name: "Corner Drugs", Phone: "555-0199"},
			list:     &PharmacyListCmd{},
			wantLine: "Corner Drugs  555-0199",
			firstID: func(ctx *cli.Context) (string, error) {
				items, err := ctx.Book.Pharmacies.List(context.Background())
				if err != nil || len(items) == 0 {
					return "", err
				}
				return items[0].ID, nil
			},
			deleteFn: func(id string) interface{ Run(*cli.Context) error } {
				return &PharmacyDeleteCmd{ID: id}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := setupTestContext(t)

			if err := tt.list.Run(ctx); err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if !strings.Contains(out.String(), "No "+tt.kind.plural()+" found.") {
				t.Errorf("unexpected empty list output: %s", out.String())
			}

			out.Reset()
			if err := tt.add.Run(ctx); err != nil {
				t.Fatalf("add failed: %v", err)
			}
			if !strings.Contains(out.String(), tt.wantLine) {
				t.Errorf("unexpected add output: %s", out.String())
			}

			out.Reset()
			if err := tt.list.Run(ctx); err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if !strings.HasPrefix(out.String(), tt.kind.title()+":") || !strings.Contains(out.String(), tt.wantLine) {
				t.Errorf("unexpected list output: %s", out.String())
			}

			id, err := tt.firstID(ctx)
			if err != nil || id == "" {
				t.Fatalf("expected a stored record, got %q (%v)", id, err)
			}
			out.Reset()
			if err := tt.deleteFn(id).Run(ctx); err != nil {
				t.Fatalf("delete failed: %v", err)
			}
			if !strings.Contains(out.String(), "Deleted "+string(tt.kind)+" "+id) {
				t.Errorf("unexpected delete output: %s", out.String())
			}
			if err := tt.deleteFn(id).Run(ctx); err == nil {
				t.Error("expected deleting a missing record to fail")
			}
		})
	}
}

func TestAddRejectsInvalidRecords(t *testing.T) {
	ctx, _ := setupTestContext(t)

	tests := []struct {
		name string
		cmd  interface{ Run(*cli.Context) error }
	}{
		{"contact without phone", &ContactAddCmd{Name: "Ada"}},
		{"doctor without name", &DoctorAddCmd{Name: "  "}},
		{"insurance without policy", &InsuranceAddCmd{Provider: "Acme"}},
		{"pharmacy without name", &PharmacyAddCmd{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestKindTitle(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindContact, "Emergency contacts"},
		{KindDoctor, "Doctors"},
		{KindInsurance, "Insurance policies"},
		{KindPharmacy, "Pharmacies"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.title(); got != tt.want {
				t.Errorf("title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineFormatting(t *testing.T) {
	got := contactLine(models.EmergencyContact{ID: "c1", Name: "Ada", Phone: "1", Email: "a@example.com"})
	if want := "c1  Ada  1  a@example.com"; got != want {
		t.Errorf("contactLine() = %q, want %q", got, want)
	}
	got = pharmacyLine(models.Pharmacy{ID: "p1", Name: "Corner", Address: "1 Main St"})
	if want := "p1  Corner  1 Main St"; got != want {
		t.Errorf("pharmacyLine() = %q, want %q", got, want)
	}
}
