package helpers

import (
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// ShippingDetails are the trimmed delivery fields of a checkout request.
type ShippingDetails struct {
	Address string
	Phone   string
}

// ValidateShipping trims the delivery fields and rejects blanks.
func ValidateShipping(address, phone string) (ShippingDetails, error) {
	details := ShippingDetails{
		Address: strings.TrimSpace(address),
		Phone:   strings.TrimSpace(phone),
	}
	missing := make([]string, 0, 2)
	if details.Address == "" {
		missing = append(missing, "shipping_address")
	}
	if details.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return ShippingDetails{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping address and phone are required").
			WithDetails(map[string]any{"missing": missing})
	}
	return details, nil
}
