package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/trobz/delivery-carrier/internal/models"
	"github.com/trobz/delivery-carrier/internal/postlogistics"
	"github.com/trobz/delivery-carrier/store"
)

// MappingError reports a requested package for which the carrier response
// contains no matching item.
type MappingError struct {
	PackageName string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("no label found for package %s in the carrier response", e.PackageName)
}

// writeTrackingAndLabels maps the carrier response values back onto the
// shipment and its packages. Without packages the single value becomes
// the shipment's tracking reference; otherwise each package gets its own
// tracking number and the shipment reference joins them all.
func (s *LabelService) writeTrackingAndLabels(ctx context.Context, shipment *models.Shipment, packages []models.Package, values []*postlogistics.LabelValue) ([]models.ShippingLabel, error) {
	if len(packages) == 0 {
		value := values[0]
		label, err := labelFromValue(value, shipment.ID, "")
		if err != nil {
			return nil, err
		}
		if err := s.store.SetShipmentTracking(ctx, shipment.ID, value.TrackingNumber); err != nil {
			return nil, err
		}
		if err := s.store.CreateShippingLabel(ctx, label, store.AttachmentOptions{SuppressDefaultType: true}); err != nil {
			return nil, err
		}
		shipment.CarrierTrackingRef = value.TrackingNumber
		return []models.ShippingLabel{*label}, nil
	}

	// Match every package to a response value before writing anything,
	// so a mapping failure leaves no partial state behind.
	matched := make([]*postlogistics.LabelValue, len(packages))
	labels := make([]models.ShippingLabel, 0, len(packages))
	for i := range packages {
		value := matchValue(values, packages[i].Name)
		if value == nil {
			return nil, &MappingError{PackageName: packages[i].Name}
		}
		label, err := labelFromValue(value, shipment.ID, packages[i].ID)
		if err != nil {
			return nil, err
		}
		matched[i] = value
		labels = append(labels, *label)
	}

	trackingRefs := make([]string, 0, len(packages))
	for i := range packages {
		pkg := &packages[i]
		value := matched[i]
		if err := s.store.SetPackageTracking(ctx, pkg.ID, value.TrackingNumber); err != nil {
			return nil, err
		}
		if err := s.store.CreateShippingLabel(ctx, &labels[i], store.AttachmentOptions{SuppressDefaultType: true}); err != nil {
			return nil, err
		}
		pkg.ParcelTracking = value.TrackingNumber
		trackingRefs = append(trackingRefs, value.TrackingNumber)
	}

	trackingRef := strings.Join(trackingRefs, "; ")
	if err := s.store.SetShipmentTracking(ctx, shipment.ID, trackingRef); err != nil {
		return nil, err
	}
	shipment.CarrierTrackingRef = trackingRef
	return labels, nil
}

// matchValue finds the response value whose item id names the package:
// the trailing `+`-separated component must contain the package name.
func matchValue(values []*postlogistics.LabelValue, packageName string) *postlogistics.LabelValue {
	for _, value := range values {
		parts := strings.Split(value.ItemID, "+")
		if strings.Contains(parts[len(parts)-1], packageName) {
			return value
		}
	}
	return nil
}

// labelFromValue decodes one carrier value into a shipping label record
// named after the tracking number.
func labelFromValue(value *postlogistics.LabelValue, shipmentID, packageID string) (*models.ShippingLabel, error) {
	file, err := base64.StdEncoding.DecodeString(value.Binary)
	if err != nil {
		return nil, fmt.Errorf("failed to decode label binary: %w", err)
	}
	return &models.ShippingLabel{
		ID:             uuid.NewString(),
		Name:           value.TrackingNumber + "." + value.FileType,
		File:           file,
		FileType:       value.FileType,
		ShipmentID:     shipmentID,
		PackageID:      packageID,
		TrackingNumber: value.TrackingNumber,
	}, nil
}
