package models

// TrackingFormat controls how the item number of a label is produced.
type TrackingFormat string

const (
	// TrackingCarrier lets the carrier generate the tracking number.
	TrackingCarrier TrackingFormat = "postlogistics"
	// TrackingShipmentNumber derives the item number from the shipment
	// reference and a pack counter.
	TrackingShipmentNumber TrackingFormat = "picking_num"
)

// Carrier API endpoints per environment.
const (
	EndpointTest = "https://wedecint.post.ch/"
	EndpointProd = "https://wedec.post.ch/"
)

// CarrierConfig is the PostLogistics configuration attached to a delivery
// method in the host application. Read-only to the label service.
type CarrierConfig struct {
	ID              string
	Name            string
	EndpointURL     string
	ClientID        string
	ClientSecret    string
	LicenseNumber   string // franking license authorizing postage charges
	Office          string // domicile post office receiving the goods
	Logo            []byte // optional logo printed on labels, PNG or GIF
	ProClimaLogo    bool
	LabelLayout     string // option code, e.g. "A6"
	OutputFormat    string // option code, e.g. "PDF"
	Resolution      string // option code, e.g. "600"
	TrackingFormat  TrackingFormat
	DefaultLang     string // language of the shipping company partner
	ProdEnvironment bool
	Options         []CarrierOption
}

// DefaultEndpoint returns the carrier endpoint matching the configured
// environment, used when no explicit endpoint URL is set.
func (c *CarrierConfig) DefaultEndpoint() string {
	if c.ProdEnvironment {
		return EndpointProd
	}
	return EndpointTest
}

// TrackingLink returns the public EasyTrack page for a tracking reference.
func TrackingLink(trackingRef string) string {
	return "https://service.post.ch/EasyTrack/submitParcelData.do?formattedParcelCodes=" + trackingRef
}
