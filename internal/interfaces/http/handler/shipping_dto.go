package handler

import "github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shipping"

// ZoneResponse pairs a pincode with the zone it resolves to
// @Description Delivery zone of a pincode
type ZoneResponse struct {
	Pincode string        `json:"pincode" example:"400001"`
	Zone    shipping.Zone `json:"zone"`
}
