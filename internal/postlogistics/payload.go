package postlogistics

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/trobz/delivery-carrier/internal/models"
)

// Carrier option codes with special handling in the label request.
const (
	CodePhoneNotification = "ZAW3213" // notify delivery by telephone
	CodeFixedDate         = "ZAW3217" // fixed delivery date
	CodeMultiParcel       = "ZAW3218" // multi-parcel shipment
	CodeDeposit           = "ZAW3219" // deposit item / delivery place
	CodeCODDomestic       = "BLN"     // cash on delivery, domestic
	CodeCODOther          = "N"       // cash on delivery, other
)

// codAmountType is the additionalData type the carrier expects for cash
// on delivery amounts.
const codAmountType = "NN_BETRAG"

var (
	itemIDPattern  = regexp.MustCompile(`[^0-9A-Za-z+\-_]`)
	itemNumPattern = regexp.MustCompile(`[^0-9]`)
)

// availableLanguages is the fixed set supported by the carrier API.
var availableLanguages = []string{"de", "en", "fr", "it"}

// BuildInput carries everything the payload builder needs for one
// shipment. Packages is the (possibly restricted) package list; its order
// is preserved in the produced item list.
type BuildInput struct {
	Shipment          *models.Shipment
	Packages          []models.Package
	Carrier           *models.CarrierConfig
	Order             *models.Order // linked commercial order, nil if none
	ShipmentsForOrder int           // how many shipments share that order
	Lang              string        // requested language tag, e.g. "fr_CH"
}

// ResolveLanguage derives the 2-letter label language from a host
// language tag, falling back to the company default, then to English.
func ResolveLanguage(lang, fallback string) string {
	if lang == "" {
		lang = fallback
	}
	code := strings.SplitN(lang, "_", 2)[0]
	for _, l := range availableLanguages {
		if code == l {
			return code
		}
	}
	return "en"
}

// shipmentServiceCodes unions the carrier's default option codes with the
// codes assigned on the shipment's packages, deduplicated, defaults first.
func shipmentServiceCodes(s *models.Shipment, carrier *models.CarrierConfig) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, opt := range carrier.Options {
		if !opt.Active || (!opt.Mandatory && !opt.ByDefault) {
			continue
		}
		if opt.TemplateCode == "" || seen[opt.TemplateCode] {
			continue
		}
		seen[opt.TemplateCode] = true
		codes = append(codes, opt.TemplateCode)
	}
	for _, code := range s.ServiceCodes() {
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

func hasServiceCode(s *models.Shipment, carrier *models.CarrierConfig, code string) bool {
	for _, c := range shipmentServiceCodes(s, carrier) {
		if c == code {
			return true
		}
	}
	return false
}

// BuildRecipient assembles the label recipient from the shipment's
// partner. Phone and mobile are only included when the shipment carries
// the delivery notification by telephone service.
func BuildRecipient(s *models.Shipment, carrier *models.CarrierConfig) *Recipient {
	p := s.Recipient

	name := p.Name
	if name == "" {
		name = p.ParentName
	}
	r := &Recipient{
		Name1:  name,
		Street: p.Street,
		Zip:    p.Zip,
		City:   p.City,
		Email:  p.Email,
	}
	if p.CountryCode != "" {
		r.Country = strings.ToUpper(p.CountryCode)
	}
	if p.Street2 != "" {
		r.AddressSuffix = p.Street2
	}
	if p.CompanyName != "" && p.CompanyName != name {
		r.Name2 = p.ParentName
		personally := false
		r.PersonallyAddressed = &personally
	}

	if hasServiceCode(s, carrier, CodePhoneNotification) {
		if phone := firstNonEmpty(s.DeliveryPhone, p.Phone); phone != "" {
			r.Phone = phone
		}
		if mobile := firstNonEmpty(s.DeliveryMobile, p.Mobile); mobile != "" {
			r.Mobile = mobile
		}
	}
	return r
}

// BuildCustomer assembles the PostLogistics customer (the sender) from
// the shipping company partner and the carrier configuration.
func BuildCustomer(s *models.Shipment, carrier *models.CarrierConfig) (*Customer, error) {
	p := s.Sender
	c := &Customer{
		Name1:              p.Name,
		Street:             p.Street,
		Zip:                p.Zip,
		City:               p.City,
		Country:            p.CountryCode,
		DomicilePostOffice: carrier.Office,
	}
	if len(carrier.Logo) > 0 {
		format, err := logoFormat(carrier.Logo)
		if err != nil {
			return nil, fmt.Errorf("failed to decode the carrier logo: %w", err)
		}
		c.Logo = base64.StdEncoding.EncodeToString(carrier.Logo)
		c.LogoFormat = format
	}
	return c, nil
}

// logoFormat sniffs the image format of the configured logo. The carrier
// accepts GIF and PNG; the format name is sent uppercased.
func logoFormat(raw []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	return strings.ToUpper(format), nil
}

// BuildLabelDefinition builds the label definition from the carrier
// configuration. Layout, output format and resolution are all required.
func BuildLabelDefinition(carrier *models.CarrierConfig) (*LabelDefinition, error) {
	if carrier.LabelLayout == "" {
		return nil, &ConfigurationError{Field: "label layout"}
	}
	if carrier.OutputFormat == "" {
		return nil, &ConfigurationError{Field: "output format"}
	}
	if carrier.Resolution == "" {
		return nil, &ConfigurationError{Field: "resolution"}
	}
	return &LabelDefinition{
		LabelLayout:     carrier.LabelLayout,
		PrintAddresses:  "RECIPIENT_AND_CUSTOMER",
		ImageFileType:   carrier.OutputFormat,
		ImageResolution: carrier.Resolution,
		PrintPreview:    false,
	}, nil
}

// BuildAttributes collects the service codes of the carrier defaults and
// the shipment's packages, plus the conditional per-item options. packNum
// is 1-based; zero means the item covers the whole shipment.
func BuildAttributes(s *models.Shipment, carrier *models.CarrierConfig, packNum, packTotal int) (*Attributes, error) {
	services := shipmentServiceCodes(s, carrier)
	if len(services) == 0 {
		return nil, ErrNoPackagingServices
	}

	attrs := &Attributes{
		Przl:     services,
		Weight:   s.Weight,
		ProClima: carrier.ProClimaLogo,
	}
	if hasServiceCode(s, carrier, CodeFixedDate) && s.DeliveryFixedDate != "" {
		attrs.DeliveryDate = s.DeliveryFixedDate
	}
	if hasServiceCode(s, carrier, CodeMultiParcel) && packNum > 0 {
		total := packTotal
		if total == 0 {
			total = len(s.Packages)
		}
		attrs.ParcelTotal = &total
		no := packNum
		attrs.ParcelNo = &no
	}
	if hasServiceCode(s, carrier, CodeDeposit) && s.DeliveryPlace != "" {
		attrs.DeliveryPlace = s.DeliveryPlace
	}
	return attrs, nil
}

// ItemID builds the item identifier from the shipment reference and an
// optional package name. Allowed characters are alphanumerics plus `+`,
// `-` and `_`; the last `+` separates shipment and package parts.
func ItemID(shipmentName, packageName string) string {
	name := itemIDPattern.ReplaceAllString(shipmentName, "")
	if packageName == "" {
		return name
	}
	packPart := itemIDPattern.ReplaceAllString(packageName, "")
	parts := make([]string, 0, 2)
	for _, p := range []string{name, packPart} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "+")
}

// ItemNumber derives the last 8 digits of the tracking number from the
// shipment reference. With packNum zero the whole shipment gets a number
// starting with 9 followed by the last 7 digits of the reference;
// otherwise 2 digits of pack counter precede the last 6 digits.
//
// e.g. 03000042 for the 3rd pack of shipment OUT/19000042.
func ItemNumber(shipmentName string, packNum int) string {
	digits := itemNumPattern.ReplaceAllString(shipmentName, "")
	if packNum == 0 {
		return "9" + zfill(lastN(digits, 7), 7)
	}
	return fmt.Sprintf("%02d%s", packNum, zfill(lastN(digits, 6), 6))
}

// ShipmentCODAmount returns the aggregate cash on delivery amount of a
// shipment. When the shipment delivers a whole single order the order
// total is used; any ambiguity requires manual per-package amounts.
func ShipmentCODAmount(s *models.Shipment, order *models.Order, shipmentsForOrder int) (decimal.Decimal, error) {
	if order == nil {
		return decimal.Zero, nil
	}
	if shipmentsForOrder > 1 {
		return decimal.Zero, ErrCODMixedOrders
	}
	if !sameLineSet(order.LineIDs, s.LineIDs) {
		return decimal.Zero, ErrCODPartialDelivery
	}
	return order.AmountTotal, nil
}

// FormatCODAmount renders an amount with exactly two decimal digits,
// rounding half away from zero (12.345 becomes "12.35").
func FormatCODAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// BuildLabelRequests assembles one label request per item of the
// shipment: one item per package in the order given by input.Packages,
// or a single item covering the whole shipment when it has no package.
func BuildLabelRequests(in BuildInput) ([]*LabelRequest, error) {
	if in.Carrier.LicenseNumber == "" {
		return nil, &ConfigurationError{Field: "franking license"}
	}
	lang := ResolveLanguage(in.Lang, in.Carrier.DefaultLang)
	customer, err := BuildCustomer(in.Shipment, in.Carrier)
	if err != nil {
		return nil, err
	}
	labelDef, err := BuildLabelDefinition(in.Carrier)
	if err != nil {
		return nil, err
	}
	recipient := BuildRecipient(in.Shipment, in.Carrier)
	items, err := buildItemList(in, recipient)
	if err != nil {
		return nil, err
	}

	requests := make([]*LabelRequest, len(items))
	for i := range items {
		requests[i] = &LabelRequest{
			Language:        strings.ToUpper(lang),
			FrankingLicense: in.Carrier.LicenseNumber,
			PpFranking:      false,
			Customer:        customer,
			LabelDefinition: labelDef,
			Item:            &items[i],
		}
	}
	return requests, nil
}

// buildItemList returns one item per package, or a single item for the
// whole shipment when no package exists.
func buildItemList(in BuildInput, recipient *Recipient) ([]Item, error) {
	s := in.Shipment

	addItem := func(items []Item, attrs *Attributes, pkg *models.Package, packCounter int) ([]Item, error) {
		var packageName string
		if pkg != nil {
			packageName = pkg.Name
		}
		item := Item{
			ItemID:     ItemID(s.Name, packageName),
			Recipient:  recipient,
			Attributes: attrs,
		}
		if in.Carrier.TrackingFormat == models.TrackingShipmentNumber {
			if pkg == nil {
				item.ItemNumber = ItemNumber(s.Name, 0)
			} else {
				item.ItemNumber = ItemNumber(s.Name, packCounter)
			}
		}
		additional, err := itemAdditionalData(in, pkg)
		if err != nil {
			return nil, err
		}
		item.AdditionalData = additional
		return append(items, item), nil
	}

	var items []Item
	var err error

	if len(in.Packages) == 0 {
		attrs, aerr := BuildAttributes(s, in.Carrier, 0, 0)
		if aerr != nil {
			return nil, aerr
		}
		return addItem(items, attrs, nil, 0)
	}

	packTotal := len(in.Packages)
	for i := range in.Packages {
		attrs, aerr := BuildAttributes(s, in.Carrier, i+1, packTotal)
		if aerr != nil {
			return nil, aerr
		}
		items, err = addItem(items, attrs, &in.Packages[i], i+1)
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

// itemAdditionalData returns the cash on delivery additional data when a
// COD service code is present on the shipment. The amount comes from the
// package itself, or from the linked order for whole-shipment items.
func itemAdditionalData(in BuildInput, pkg *models.Package) ([]AdditionalData, error) {
	if !hasServiceCode(in.Shipment, in.Carrier, CodeCODDomestic) && !hasServiceCode(in.Shipment, in.Carrier, CodeCODOther) {
		return nil, nil
	}
	var amount decimal.Decimal
	if pkg != nil {
		amount = pkg.CODAmount
	} else {
		var err error
		amount, err = ShipmentCODAmount(in.Shipment, in.Order, in.ShipmentsForOrder)
		if err != nil {
			return nil, err
		}
	}
	return []AdditionalData{{Type: codAmountType, Value: FormatCODAmount(amount)}}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func lastN(s string, n int) string {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

func zfill(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// sameLineSet reports whether both line-id slices contain exactly the
// same set of identifiers.
func sameLineSet(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	matched := make(map[string]bool, len(b))
	for _, id := range b {
		if !set[id] {
			return false
		}
		matched[id] = true
	}
	return len(matched) == len(set)
}
