package store

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/trobz/delivery-carrier/internal/models"
)

// MemoryStore is an in-memory DeliveryStore used by tests and local
// development. Records are seeded through the Put helpers.
type MemoryStore struct {
	mu        sync.RWMutex
	shipments map[string]*models.Shipment
	carriers  map[string]*models.CarrierConfig
	orders    map[string]*models.Order
	catalog   []models.TemplateOption
	labels    []models.ShippingLabel
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shipments: make(map[string]*models.Shipment),
		carriers:  make(map[string]*models.CarrierConfig),
		orders:    make(map[string]*models.Order),
	}
}

func (s *MemoryStore) PutShipment(shipment *models.Shipment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shipments[shipment.ID] = shipment
}

func (s *MemoryStore) PutCarrierConfig(carrier *models.CarrierConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carriers[carrier.ID] = carrier
}

func (s *MemoryStore) PutOrder(order *models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
}

func (s *MemoryStore) PutTemplateOptions(catalog []models.TemplateOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
}

func (s *MemoryStore) GetShipment(ctx context.Context, id string) (*models.Shipment, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	shipment, ok := s.shipments[id]
	if !ok {
		return nil, ErrShipmentNotFound
	}
	copied := *shipment
	copied.Packages = append([]models.Package(nil), shipment.Packages...)
	return &copied, nil
}

func (s *MemoryStore) GetCarrierConfig(ctx context.Context, id string) (*models.CarrierConfig, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	carrier, ok := s.carriers[id]
	if !ok {
		return nil, ErrCarrierNotFound
	}
	copied := *carrier
	return &copied, nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *MemoryStore) CountShipmentsForOrder(ctx context.Context, orderID string) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, shipment := range s.shipments {
		if shipment.OrderID == orderID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) ListTemplateOptions(ctx context.Context) ([]models.TemplateOption, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TemplateOption(nil), s.catalog...), nil
}

func (s *MemoryStore) SetShipmentTracking(ctx context.Context, shipmentID, trackingRef string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	shipment, ok := s.shipments[shipmentID]
	if !ok {
		return ErrShipmentNotFound
	}
	shipment.CarrierTrackingRef = trackingRef
	return nil
}

func (s *MemoryStore) SetPackageTracking(ctx context.Context, packageID, trackingNumber string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, shipment := range s.shipments {
		for i := range shipment.Packages {
			if shipment.Packages[i].ID == packageID {
				shipment.Packages[i].ParcelTracking = trackingNumber
				return nil
			}
		}
	}
	return ErrPackageNotFound
}

func (s *MemoryStore) CreateShippingLabel(ctx context.Context, label *models.ShippingLabel, opts AttachmentOptions) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	applyDefaultFileType(label, opts)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = append(s.labels, *label)
	return nil
}

// ShippingLabels returns the labels created so far, for test assertions.
func (s *MemoryStore) ShippingLabels() []models.ShippingLabel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ShippingLabel(nil), s.labels...)
}

// applyDefaultFileType derives the file type from the attachment name
// unless the caller suppressed the default.
func applyDefaultFileType(label *models.ShippingLabel, opts AttachmentOptions) {
	if opts.SuppressDefaultType || label.FileType != "" {
		return
	}
	label.FileType = strings.TrimPrefix(filepath.Ext(label.Name), ".")
}
