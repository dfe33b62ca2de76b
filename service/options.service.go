package service

import (
	"context"

	"github.com/trobz/delivery-carrier/internal/models"
	"github.com/trobz/delivery-carrier/store"
)

// OptionService answers catalog queries about carrier service options.
type OptionService struct {
	store store.DeliveryStore
}

func NewOptionService(deliveryStore store.DeliveryStore) *OptionService {
	return &OptionService{store: deliveryStore}
}

// AllowedOptionsForCarrier loads the carrier configuration and catalog
// and returns the options currently selectable on that carrier.
func (s *OptionService) AllowedOptionsForCarrier(ctx context.Context, carrierID string) ([]models.TemplateOption, error) {
	carrier, err := s.store.GetCarrierConfig(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.store.ListTemplateOptions(ctx)
	if err != nil {
		return nil, err
	}
	return AllowedOptions(catalog, carrier), nil
}

// AllowedOptions computes on demand which catalog options a carrier may
// select: additional services and delivery instructions compatible with
// the selected basic services, plus the single-selection option types
// (layout, output format, resolution) not yet fixed on the carrier.
// Nothing is cached; callers invoke it whenever they need the list.
func AllowedOptions(catalog []models.TemplateOption, carrier *models.CarrierConfig) []models.TemplateOption {
	basicCodes := make(map[string]bool)
	selectedSingle := make(map[models.OptionType]bool)
	for _, opt := range carrier.Options {
		if opt.Type == models.OptionBasic {
			basicCodes[opt.TemplateCode] = true
		}
		if opt.Mandatory && isSingleOptionType(opt.Type) {
			selectedSingle[opt.Type] = true
		}
	}

	var allowed []models.TemplateOption
	for _, tmpl := range catalog {
		switch {
		case tmpl.Type == models.OptionAdditional || tmpl.Type == models.OptionDelivery:
			if compatibleWithBasics(tmpl, basicCodes) {
				allowed = append(allowed, tmpl)
			}
		case isSingleOptionType(tmpl.Type):
			if !selectedSingle[tmpl.Type] {
				allowed = append(allowed, tmpl)
			}
		}
	}
	return allowed
}

// DefaultOptions returns the carrier options applied to every shipment:
// the mandatory ones and those flagged as applied by default.
func DefaultOptions(options []models.CarrierOption) []models.CarrierOption {
	var defaults []models.CarrierOption
	for _, opt := range options {
		if opt.Mandatory || opt.ByDefault {
			defaults = append(defaults, opt)
		}
	}
	return defaults
}

func isSingleOptionType(t models.OptionType) bool {
	for _, single := range models.SingleOptionTypes {
		if t == single {
			return true
		}
	}
	return false
}

func compatibleWithBasics(tmpl models.TemplateOption, basicCodes map[string]bool) bool {
	for _, code := range tmpl.BasicServiceCodes {
		if basicCodes[code] {
			return true
		}
	}
	return false
}
