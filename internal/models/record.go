package models

import (
	"fmt"
	"strings"
)

type EmergencyContact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
}

func (c *EmergencyContact) GetID() string   { return c.ID }
func (c *EmergencyContact) SetID(id string) { c.ID = id }

func (c *EmergencyContact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("contact name cannot be empty")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("contact phone cannot be empty")
	}
	return nil
}

type Doctor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

func (d *Doctor) GetID() string   { return d.ID }
func (d *Doctor) SetID(id string) { d.ID = id }

func (d *Doctor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("doctor name cannot be empty")
	}
	return nil
}

type Insurance struct {
	ID           string `json:"id"`
	Provider     string `json:"provider"`
	PolicyNumber string `json:"policy_number"`
	GroupNumber  string `json:"group_number,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

func (i *Insurance) GetID() string   { return i.ID }
func (i *Insurance) SetID(id string) { i.ID = id }

func (i *Insurance) Validate() error {
	if strings.TrimSpace(i.Provider) == "" {
		return fmt.Errorf("insurance provider cannot be empty")
	}
	if strings.TrimSpace(i.PolicyNumber) == "" {
		return fmt.Errorf("insurance policy number cannot be empty")
	}
	return nil
}

type Pharmacy struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (p *Pharmacy) GetID() string   { return p.ID }
func (p *Pharmacy) SetID(id string) { p.ID = id }

func (p *Pharmacy) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("pharmacy name cannot be empty")
	}
	return nil
}
