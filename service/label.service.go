package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/trobz/delivery-carrier/internal/models"
	"github.com/trobz/delivery-carrier/internal/postlogistics"
	"github.com/trobz/delivery-carrier/store"
)

// LabelProvider generates one address label per call. The production
// implementation is postlogistics.Client; tests inject a double.
type LabelProvider interface {
	GenerateLabel(ctx context.Context, carrier *models.CarrierConfig, request *postlogistics.LabelRequest) (*postlogistics.LabelValue, error)
}

// Publisher sends an event to the message broker.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// DispatchMode controls how many carrier calls one generation makes.
type DispatchMode int

const (
	// DispatchPerItem issues one label call per item so that every
	// package receives its own label. This is the default.
	DispatchPerItem DispatchMode = iota
	// DispatchFirstItem issues a single call carrying only the first
	// item of the list, for carrier accounts restricted to one item
	// per shipment.
	DispatchFirstItem
)

// ParseDispatchMode maps a configuration value to a DispatchMode.
func ParseDispatchMode(mode string) (DispatchMode, error) {
	switch mode {
	case "", "per_item":
		return DispatchPerItem, nil
	case "first_item":
		return DispatchFirstItem, nil
	}
	return DispatchPerItem, fmt.Errorf("unknown dispatch mode %q", mode)
}

// GenerateOptions restricts and tunes one label generation call.
type GenerateOptions struct {
	// PackageIDs restricts the generation to the given packages, in
	// the given order. Empty means all packages, sorted by name.
	PackageIDs []string
	// Lang is the requested label language tag, e.g. "fr_CH".
	Lang string
}

// LabelService orchestrates label generation for shipments: it builds the
// carrier payloads, issues the calls, maps the responses back onto the
// host records and publishes a label.generated event.
//
// Generation for one shipment is strictly sequential; callers must
// serialize concurrent attempts on the same shipment.
type LabelService struct {
	store       store.DeliveryStore
	provider    LabelProvider
	producer    Publisher
	dispatch    DispatchMode
	defaultLang string
}

// NewLabelService wires the service. producer may be nil when no broker
// is configured; defaultLang is the language tag used when a generation
// request carries none.
func NewLabelService(deliveryStore store.DeliveryStore, provider LabelProvider, producer Publisher, dispatch DispatchMode, defaultLang string) *LabelService {
	return &LabelService{
		store:       deliveryStore,
		provider:    provider,
		producer:    producer,
		dispatch:    dispatch,
		defaultLang: defaultLang,
	}
}

// GenerateLabels generates carrier labels for a shipment and writes the
// received tracking numbers back. Any error aborts the whole call for the
// shipment: nothing is written unless every carrier call succeeded.
func (s *LabelService) GenerateLabels(ctx context.Context, shipmentID string, opts GenerateOptions) ([]models.ShippingLabel, error) {
	shipment, err := s.store.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	carrier, err := s.store.GetCarrierConfig(ctx, shipment.CarrierID)
	if err != nil {
		return nil, err
	}
	packages, err := selectPackages(shipment, opts.PackageIDs)
	if err != nil {
		return nil, err
	}

	lang := opts.Lang
	if lang == "" {
		lang = s.defaultLang
	}
	input := postlogistics.BuildInput{
		Shipment: shipment,
		Packages: packages,
		Carrier:  carrier,
		Lang:     lang,
	}
	if shipment.OrderID != "" {
		order, err := s.store.GetOrder(ctx, shipment.OrderID)
		if err != nil {
			return nil, err
		}
		count, err := s.store.CountShipmentsForOrder(ctx, shipment.OrderID)
		if err != nil {
			return nil, err
		}
		input.Order = order
		input.ShipmentsForOrder = count
	}

	requests, err := postlogistics.BuildLabelRequests(input)
	if err != nil {
		return nil, err
	}
	if s.dispatch == DispatchFirstItem {
		requests = requests[:1]
		if len(packages) > 1 {
			packages = packages[:1]
		}
	}

	values := make([]*postlogistics.LabelValue, 0, len(requests))
	for _, request := range requests {
		value, err := s.provider.GenerateLabel(ctx, carrier, request)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	labels, err := s.writeTrackingAndLabels(ctx, shipment, packages, values)
	if err != nil {
		return nil, err
	}

	if s.producer != nil {
		event := map[string]interface{}{
			"event":       "label.generated",
			"shipment_id": shipment.ID,
			"labels":      len(labels),
		}
		go func() {
			if err := s.producer.Publish(context.Background(), shipment.ID, event); err != nil {
				log.Println("failed to publish label.generated event:", err)
			}
		}()
	}
	return labels, nil
}

// selectPackages returns the packages labels are generated for: all of
// them sorted by name, or the requested subset in the requested order.
func selectPackages(shipment *models.Shipment, packageIDs []string) ([]models.Package, error) {
	if len(packageIDs) == 0 {
		packages := append([]models.Package(nil), shipment.Packages...)
		sort.Slice(packages, func(i, j int) bool {
			return packages[i].Name < packages[j].Name
		})
		return packages, nil
	}

	byID := make(map[string]models.Package, len(shipment.Packages))
	for _, pkg := range shipment.Packages {
		byID[pkg.ID] = pkg
	}
	packages := make([]models.Package, 0, len(packageIDs))
	for _, id := range packageIDs {
		pkg, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", store.ErrPackageNotFound, id)
		}
		packages = append(packages, pkg)
	}
	return packages, nil
}
