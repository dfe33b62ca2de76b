package postlogistics

// Wire types for the PostLogistics "Digital Commerce" barcode API.
// Field names follow the swagger published at
// https://wedec.post.ch/doc/api/barcode/v1/swagger.yaml

// Recipient is the delivery address printed on the label.
type Recipient struct {
	Name1               string `json:"name1"`
	Name2               string `json:"name2,omitempty"`
	Street              string `json:"street"`
	AddressSuffix       string `json:"addressSuffix,omitempty"`
	Zip                 string `json:"zip"`
	City                string `json:"city"`
	Country             string `json:"country,omitempty"`
	Email               string `json:"email,omitempty"`
	Phone               string `json:"phone,omitempty"`
	Mobile              string `json:"mobile,omitempty"`
	PersonallyAddressed *bool  `json:"personallyAddressed,omitempty"`
}

// Customer is the PostLogistics customer, that is the sender.
type Customer struct {
	Name1              string `json:"name1"`
	Street             string `json:"street"`
	Zip                string `json:"zip"`
	City               string `json:"city"`
	Country            string `json:"country"`
	DomicilePostOffice string `json:"domicilePostOffice,omitempty"`
	Logo               string `json:"logo,omitempty"` // base64 of the logo binary
	LogoFormat         string `json:"logoFormat,omitempty"`
}

// LabelDefinition describes the physical label to produce.
type LabelDefinition struct {
	LabelLayout     string `json:"labelLayout"`
	PrintAddresses  string `json:"printAddresses"`
	ImageFileType   string `json:"imageFileType"`
	ImageResolution string `json:"imageResolution"`
	PrintPreview    bool   `json:"printPreview"`
}

// Attributes carries the service codes and per-item options of a label.
type Attributes struct {
	Przl          []string `json:"przl"`
	Weight        float64  `json:"weight"`
	DeliveryDate  string   `json:"deliveryDate,omitempty"`
	ParcelTotal   *int     `json:"parcelTotal,omitempty"`
	ParcelNo      *int     `json:"parcelNo,omitempty"`
	DeliveryPlace string   `json:"deliveryPlace,omitempty"`
	ProClima      bool     `json:"proClima"`
}

// AdditionalData is a typed key/value attached to an item, e.g. the cash
// on delivery amount.
type AdditionalData struct {
	Type  string `json:"Type"`
	Value string `json:"Value"`
}

// Item is one unit of the label request, corresponding to one package or
// to the whole shipment.
type Item struct {
	ItemID         string           `json:"itemID"`
	ItemNumber     string           `json:"itemNumber,omitempty"`
	Recipient      *Recipient       `json:"recipient"`
	Attributes     *Attributes      `json:"attributes"`
	AdditionalData []AdditionalData `json:"additionalData,omitempty"`
}

// LabelRequest is the exact JSON payload of one generateAddressLabel
// call. The API accepts a single item per request.
type LabelRequest struct {
	Language        string           `json:"language"`
	FrankingLicense string           `json:"frankingLicense"`
	PpFranking      bool             `json:"ppFranking"`
	Customer        *Customer        `json:"customer"`
	CustomerSystem  *string          `json:"customerSystem"`
	LabelDefinition *LabelDefinition `json:"labelDefinition"`
	SendingID       *string          `json:"sendingID"`
	Item            *Item            `json:"item"`
}

// labelResponse mirrors the carrier's generateAddressLabel response.
type labelResponse struct {
	Item struct {
		ItemID    string         `json:"itemID"`
		IdentCode string         `json:"identCode"`
		Label     []string       `json:"label"`
		Errors    []CarrierError `json:"errors"`
	} `json:"item"`
}

// LabelValue is one generated label extracted from a carrier response.
type LabelValue struct {
	ItemID         string
	Binary         string // base64 of the label payload
	TrackingNumber string
	FileType       string
}
