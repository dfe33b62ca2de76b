package models

import "github.com/shopspring/decimal"

// Partner is an address-book record owned by the host application.
// The label service only ever reads it.
type Partner struct {
	Name        string
	ParentName  string // name of the parent (company) record, if any
	CompanyName string // commercial company the partner belongs to
	Street      string
	Street2     string
	Zip         string
	City        string
	CountryCode string // ISO 3166-1 alpha-2, any case
	Phone       string
	Mobile      string
	Email       string
	Lang        string // host language tag, e.g. "fr_CH"
}

// Shipment is one outbound delivery order (a picking) grouping zero or
// more packages. It is read-only input to the payload builder; only the
// tracking reference is written back after a successful generation.
type Shipment struct {
	ID        string
	Name      string // reference, e.g. "OUT/2024-00042"
	Recipient Partner
	Sender    Partner // partner record of the shipping company
	CarrierID string
	OrderID   string   // linked commercial order, empty if none
	LineIDs   []string // movement lines covered by this shipment

	Weight            float64
	DeliveryFixedDate string // "YYYY-MM-DD", fixed delivery date service
	DeliveryPlace     string // deposit item service
	DeliveryPhone     string // overrides the recipient phone for notification
	DeliveryMobile    string // overrides the recipient mobile for notification

	CarrierTrackingRef string
	Packages           []Package
}

// Package is one physical parcel within a shipment.
type Package struct {
	ID             string
	Name           string
	ShipmentID     string
	ServiceCodes   []string // carrier service option codes assigned via packaging
	Weight         float64
	CODAmount      decimal.Decimal // declared per-package cash on delivery amount
	ParcelTracking string
}

// Order is the commercial order a shipment may be linked to. Its total is
// the source of the shipment-level cash on delivery amount.
type Order struct {
	ID          string
	Name        string
	AmountTotal decimal.Decimal
	LineIDs     []string // full set of movement lines of the order
}

// ServiceCodes returns the carrier service codes assigned across all
// packages, in package order, deduplicated and without empty entries.
func (s *Shipment) ServiceCodes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, pkg := range s.Packages {
		for _, code := range pkg.ServiceCodes {
			if code == "" || seen[code] {
				continue
			}
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}

// HasServiceCode reports whether any package of the shipment carries the
// given carrier service code.
func (s *Shipment) HasServiceCode(code string) bool {
	for _, pkg := range s.Packages {
		for _, c := range pkg.ServiceCodes {
			if c == code {
				return true
			}
		}
	}
	return false
}
