package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/carelog/internal/records"
)

// Kind names a record collection.
type Kind string

const (
	KindContact   Kind = "contact"
	KindDoctor    Kind = "doctor"
	KindInsurance Kind = "insurance"
	KindPharmacy  Kind = "pharmacy"
)

func (k Kind) plural() string {
	switch k {
	case KindInsurance:
		return "insurance policies"
	case KindPharmacy:
		return "pharmacies"
	case KindContact:
		return "emergency contacts"
	default:
		return string(k) + "s"
	}
}

func (k Kind) title() string {
	p := k.plural()
	return strings.ToUpper(p[:1]) + p[1:]
}

func (k Kind) lines(ctx context.Context, b *records.Book) ([]string, error) {
	switch k {
	case KindContact:
		return listLines(ctx, b.Contacts, contactLine)
	case KindDoctor:
		return listLines(ctx, b.Doctors, doctorLine)
	case KindInsurance:
		return listLines(ctx, b.Insurance, insuranceLine)
	case KindPharmacy:
		return listLines(ctx, b.Pharmacies, pharmacyLine)
	}
	return nil, fmt.Errorf("unknown record kind %q", k)
}

func (k Kind) delete(ctx context.Context, b *records.Book, id string) error {
	switch k {
	case KindContact:
		return b.Contacts.Delete(ctx, id)
	case KindDoctor:
		return b.Doctors.Delete(ctx, id)
	case KindInsurance:
		return b.Insurance.Delete(ctx, id)
	case KindPharmacy:
		return b.Pharmacies.Delete(ctx, id)
	}
	return fmt.Errorf("unknown record kind %q", k)
}

func listLines[T any, P records.Entity[T]](ctx context.Context, repo *records.Repository[T, P], line func(T) string) ([]string, error) {
	items, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = line(item)
	}
	return lines, nil
}
