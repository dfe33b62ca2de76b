package store

import (
	"context"
	"errors"

	"github.com/trobz/delivery-carrier/internal/models"
)

// Not-found sentinels, one per host record kind.
var (
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrCarrierNotFound  = errors.New("carrier configuration not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPackageNotFound  = errors.New("package not found")
)

// AttachmentOptions controls how a shipping label record is stored.
type AttachmentOptions struct {
	// SuppressDefaultType keeps the store from deriving a file type
	// from the attachment name when none is set on the record.
	SuppressDefaultType bool
}

// DeliveryStore is the interface to the host application's records. The
// label service reads shipments, packages, carrier configurations and
// orders through it, and writes back tracking numbers and label
// attachments.
type DeliveryStore interface {
	GetShipment(ctx context.Context, id string) (*models.Shipment, error)
	GetCarrierConfig(ctx context.Context, id string) (*models.CarrierConfig, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)

	// CountShipmentsForOrder reports how many shipments are linked to
	// the given order, used to detect ambiguous cash on delivery
	// amounts.
	CountShipmentsForOrder(ctx context.Context, orderID string) (int, error)

	// ListTemplateOptions returns the static carrier option catalog.
	ListTemplateOptions(ctx context.Context) ([]models.TemplateOption, error)

	SetShipmentTracking(ctx context.Context, shipmentID, trackingRef string) error
	SetPackageTracking(ctx context.Context, packageID, trackingNumber string) error
	CreateShippingLabel(ctx context.Context, label *models.ShippingLabel, opts AttachmentOptions) error
}
