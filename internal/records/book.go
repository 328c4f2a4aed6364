package records

import (
	"context"

	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/docstore"
	"github.com/julianstephens/carelog/internal/models"
)

type (
	Contacts   = Repository[models.EmergencyContact, *models.EmergencyContact]
	Doctors    = Repository[models.Doctor, *models.Doctor]
	Insurance  = Repository[models.Insurance, *models.Insurance]
	Pharmacies = Repository[models.Pharmacy, *models.Pharmacy]
)

// Book groups the record collections of one store.
type Book struct {
	Medicines  *Medicines
	Contacts   *Contacts
	Doctors    *Doctors
	Insurance  *Insurance
	Pharmacies *Pharmacies
	Answers    *AnswerBook
}

func NewContacts(store docstore.Store) *Contacts {
	return NewRepository[models.EmergencyContact](store, constants.CollectionContacts)
}

func NewDoctors(store docstore.Store) *Doctors {
	return NewRepository[models.Doctor](store, constants.CollectionDoctors)
}

func NewInsurance(store docstore.Store) *Insurance {
	return NewRepository[models.Insurance](store, constants.CollectionInsurance)
}

func NewPharmacies(store docstore.Store) *Pharmacies {
	return NewRepository[models.Pharmacy](store, constants.CollectionPharmacies)
}

// Snapshot is every record of a book, read at one point in time.
type Snapshot struct {
	Answers    []models.AnswerSlot
	Medicines  []models.Medicine
	Contacts   []models.EmergencyContact
	Doctors    []models.Doctor
	Insurance  []models.Insurance
	Pharmacies []models.Pharmacy
}

// Snapshot reads all collections. Answers are the merged view.
func (b *Book) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	var err error
	if b.Answers != nil {
		if s.Answers, err = b.Answers.View(ctx); err != nil {
			return s, err
		}
	}
	if s.Medicines, err = b.Medicines.List(ctx); err != nil {
		return s, err
	}
	if s.Contacts, err = b.Contacts.List(ctx); err != nil {
		return s, err
	}
	if s.Doctors, err = b.Doctors.List(ctx); err != nil {
		return s, err
	}
	if s.Insurance, err = b.Insurance.List(ctx); err != nil {
		return s, err
	}
	if s.Pharmacies, err = b.Pharmacies.List(ctx); err != nil {
		return s, err
	}
	return s, nil
}
