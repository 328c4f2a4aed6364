// Package directory implements the contact, doctor, insurance and pharmacy
// commands.
package directory

import (
	"context"
	"fmt"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/records"
)

type ContactCmd struct {
	Add    ContactAddCmd    `cmd:"" help:"Add an emergency contact."`
	List   ContactListCmd   `cmd:"" help:"List emergency contacts." default:"1"`
	Delete ContactDeleteCmd `cmd:"" help:"Delete an emergency contact."`
}

type DoctorCmd struct {
	Add    DoctorAddCmd    `cmd:"" help:"Add a doctor."`
	List   DoctorListCmd   `cmd:"" help:"List doctors." default:"1"`
	Delete DoctorDeleteCmd `cmd:"" help:"Delete a doctor."`
}

type InsuranceCmd struct {
	Add    InsuranceAddCmd    `cmd:"" help:"Add an insurance policy."`
	List   InsuranceListCmd   `cmd:"" help:"List insurance policies." default:"1"`
	Delete InsuranceDeleteCmd `cmd:"" help:"Delete an insurance policy."`
}

type PharmacyCmd struct {
	Add    PharmacyAddCmd    `cmd:"" help:"Add a pharmacy."`
	List   PharmacyListCmd   `cmd:"" help:"List pharmacies." default:"1"`
	Delete PharmacyDeleteCmd `cmd:"" help:"Delete a pharmacy."`
}

type ContactAddCmd struct {
	Name         string `arg:"" help:"Contact name."`
	Phone        string `short:"p" help:"Phone number." required:""`
	Relationship string `short:"r" help:"Relationship, e.g. spouse."`
	Email        string `short:"e" help:"Email address."`
}

func (c *ContactAddCmd) Run(ctx *cli.Context) error {
	return add(ctx, func(b *records.Book) *records.Contacts { return b.Contacts }, models.EmergencyContact{
		Name:         c.Name,
		Phone:        c.Phone,
		Relationship: c.Relationship,
		Email:        c.Email,
	}, contactLine)
}

type DoctorAddCmd struct {
	Name      string `arg:"" help:"Doctor name."`
	Specialty string `short:"s" help:"Specialty."`
	Phone     string `short:"p" help:"Phone number."`
	Address   string `short:"a" help:"Office address."`
}

func (c *DoctorAddCmd) Run(ctx *cli.Context) error {
	return add(ctx, func(b *records.Book) *records.Doctors { return b.Doctors }, models.Doctor{
		Name:      c.Name,
		Specialty: c.Specialty,
		Phone:     c.Phone,
		Address:   c.Address,
	}, doctorLine)
}

type InsuranceAddCmd struct {
	Provider     string `arg:"" help:"Insurance provider."`
	PolicyNumber string `short:"n" help:"Policy number." required:""`
	GroupNumber  string `short:"g" help:"Group number."`
	Phone        string `short:"p" help:"Provider phone number."`
}

func (c *InsuranceAddCmd) Run(ctx *cli.Context) error {
	return add(ctx, func(b *records.Book) *records.Insurance { return b.Insurance }, models.Insurance{
		Provider:     c.Provider,
		PolicyNumber: c.PolicyNumber,
		GroupNumber:  c.GroupNumber,
		Phone:        c.Phone,
	}, insuranceLine)
}

type PharmacyAddCmd struct {
	Name    string `arg:"" help:"Pharmacy name."`
	Phone   string `short:"p" help:"Phone number."`
	Address string `short:"a" help:"Address."`
}

func (c *PharmacyAddCmd) Run(ctx *cli.Context) error {
	return add(ctx, func(b *records.Book) *records.Pharmacies { return b.Pharmacies }, models.Pharmacy{
		Name:    c.Name,
		Phone:   c.Phone,
		Address: c.Address,
	}, pharmacyLine)
}

type (
	ContactListCmd   struct{}
	DoctorListCmd    struct{}
	InsuranceListCmd struct{}
	PharmacyListCmd  struct{}
)

func (c *ContactListCmd) Run(ctx *cli.Context) error   { return list(ctx, KindContact) }
func (c *DoctorListCmd) Run(ctx *cli.Context) error    { return list(ctx, KindDoctor) }
func (c *InsuranceListCmd) Run(ctx *cli.Context) error { return list(ctx, KindInsurance) }
func (c *PharmacyListCmd) Run(ctx *cli.Context) error  { return list(ctx, KindPharmacy) }

type ContactDeleteCmd struct {
	ID string `arg:"" help:"Contact ID."`
}

type DoctorDeleteCmd struct {
	ID string `arg:"" help:"Doctor ID."`
}

type InsuranceDeleteCmd struct {
	ID string `arg:"" help:"Insurance policy ID."`
}

type PharmacyDeleteCmd struct {
	ID string `arg:"" help:"Pharmacy ID."`
}

func (c *ContactDeleteCmd) Run(ctx *cli.Context) error   { return remove(ctx, KindContact, c.ID) }
func (c *DoctorDeleteCmd) Run(ctx *cli.Context) error    { return remove(ctx, KindDoctor, c.ID) }
func (c *InsuranceDeleteCmd) Run(ctx *cli.Context) error { return remove(ctx, KindInsurance, c.ID) }
func (c *PharmacyDeleteCmd) Run(ctx *cli.Context) error  { return remove(ctx, KindPharmacy, c.ID) }

func list(ctx *cli.Context, kind Kind) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	lines, err := kind.lines(bg, ctx.Book)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		ctx.Printf("No %s found.\n", kind.plural())
		return nil
	}
	ctx.Printf("%s:\n", kind.title())
	for _, line := range lines {
		ctx.Printf("  %s\n", line)
	}
	return nil
}

func remove(ctx *cli.Context, kind Kind, id string) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	if err := kind.delete(bg, ctx.Book, id); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	ctx.Printf("Deleted %s %s\n", kind, id)
	return nil
}

func add[T any, P records.Entity[T]](ctx *cli.Context, repo func(*records.Book) *records.Repository[T, P], v T, line func(T) string) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	saved, err := repo(ctx.Book).Add(bg, v)
	if err != nil {
		return err
	}
	ctx.Printf("Added %s\n", line(saved))
	return nil
}

func contactLine(c models.EmergencyContact) string {
	line := fmt.Sprintf("%s  %s  %s", c.ID, c.Name, c.Phone)
	if c.Relationship != "" {
		line += fmt.Sprintf(" (%s)", c.Relationship)
	}
	if c.Email != "" {
		line += "  " + c.Email
	}
	return line
}

func doctorLine(d models.Doctor) string {
	line := fmt.Sprintf("%s  %s", d.ID, d.Name)
	if d.Specialty != "" {
		line += fmt.Sprintf(" (%s)", d.Specialty)
	}
	if d.Phone != "" {
		line += "  " + d.Phone
	}
	if d.Address != "" {
		line += "  " + d.Address
	}
	return line
}

func insuranceLine(i models.Insurance) string {
	line := fmt.Sprintf("%s  %s  policy %s", i.ID, i.Provider, i.PolicyNumber)
	if i.GroupNumber != "" {
		line += ", group " + i.GroupNumber
	}
	if i.Phone != "" {
		line += "  " + i.Phone
	}
	return line
}

func pharmacyLine(p models.Pharmacy) string {
	line := fmt.Sprintf("%s  %s", p.ID, p.Name)
	if p.Phone != "" {
		line += "  " + p.Phone
	}
	if p.Address != "" {
		line += "  " + p.Address
	}
	return line
}
