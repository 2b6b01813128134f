package courier

import (
	"context"
	"encoding/json"
	"slices"
	"time"
)

// TrackingSnapshot is the current state and full event history of a shipment.
// Destination and consignee are only disclosed once the shipment is delivered.
type TrackingSnapshot struct {
	AWB           string
	OrderID       string
	ShipmentID    string
	CourierName   string
	CurrentStatus ShipmentStatus
	Events        []TrackingEvent
	Destination   string
	Consignee     string
	DeliveredAt   *time.Time
}

type trackActivityJSON struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Location string `json:"location"`
}

type shipmentTrackJSON struct {
	AWBCode       string              `json:"awb_code"`
	CurrentStatus ShipmentStatus      `json:"current_status"`
	CourierName   string              `json:"courier_name,omitempty"`
	Destination   string              `json:"destination,omitempty"`
	ConsigneeName string              `json:"consignee_name,omitempty"`
	DeliveredDate string              `json:"delivered_date,omitempty"`
	Activities    []trackActivityJSON `json:"shipment_track_activities"`
}

type trackingJSON struct {
	TrackingData struct {
		ShipmentTrack []shipmentTrackJSON `json:"shipment_track"`
	} `json:"tracking_data"`
}

// MarshalJSON renders the aggregator tracking envelope
func (s TrackingSnapshot) MarshalJSON() ([]byte, error) {
	track := shipmentTrackJSON{
		AWBCode:       s.AWB,
		CurrentStatus: s.CurrentStatus,
		CourierName:   s.CourierName,
		Destination:   s.Destination,
		ConsigneeName: s.Consignee,
		Activities:    make([]trackActivityJSON, 0, len(s.Events)),
	}
	if s.DeliveredAt != nil {
		track.DeliveredDate = s.DeliveredAt.Format(EventDateLayout + " " + EventTimeLayout)
	}
	for _, ev := range s.Events {
		track.Activities = append(track.Activities, trackActivityJSON{
			Date:     ev.Date,
			Time:     ev.Time,
			Activity: ev.Activity,
			Location: ev.Location,
		})
	}

	var out trackingJSON
	out.TrackingData.ShipmentTrack = []shipmentTrackJSON{track}
	return json.Marshal(out)
}

// Track returns the tracking snapshot for an AWB
func (e *Emulator) Track(ctx context.Context, awb string) (*TrackingSnapshot, error) {
	entry, ok := e.getEntryByAWB(awb)
	if !ok {
		return nil, ErrShipmentNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	o := &entry.order
	snap := &TrackingSnapshot{
		AWB:           o.AWB,
		OrderID:       o.OrderID,
		ShipmentID:    o.ShipmentID,
		CourierName:   o.CourierName,
		CurrentStatus: o.Status,
		Events:        slices.Clone(o.TrackingEvents),
	}
	if o.Status == StatusDelivered {
		snap.Destination = destinationOf(o)
		snap.Consignee = o.Billing.Name
		if o.DeliveredAt != nil {
			t := *o.DeliveredAt
			snap.DeliveredAt = &t
		}
	}
	return snap, nil
}
