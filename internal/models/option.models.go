package models

// OptionType classifies a carrier service option.
type OptionType string

const (
	OptionLabelLayout  OptionType = "label_layout"
	OptionOutputFormat OptionType = "output_format"
	OptionResolution   OptionType = "resolution"
	OptionBasic        OptionType = "basic"
	OptionAdditional   OptionType = "additional"
	OptionDelivery     OptionType = "delivery"
)

// SingleOptionTypes are the option types of which a carrier selects
// exactly one (they describe the label itself, not a service).
var SingleOptionTypes = []OptionType{OptionLabelLayout, OptionOutputFormat, OptionResolution}

// TemplateOption is one entry of the static carrier service catalog.
type TemplateOption struct {
	Code        string
	Name        string
	Description string
	Type        OptionType
	// BasicServiceCodes lists the basic services this additional or
	// delivery option is compatible with.
	BasicServiceCodes []string
}

// CarrierOption attaches a catalog option to a carrier configuration.
type CarrierOption struct {
	TemplateCode string
	Type         OptionType
	Mandatory    bool
	ByDefault    bool
	Active       bool
}

// ShippingLabel is the attachment-like record created for each generated
// label and linked to the shipment, and to a package when one applies.
type ShippingLabel struct {
	ID             string
	Name           string // "<tracking number>.<file type>"
	File           []byte // decoded label binary
	FileType       string
	ShipmentID     string
	PackageID      string // empty when the label covers the whole shipment
	TrackingNumber string
}
