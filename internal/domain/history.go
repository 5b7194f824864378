package domain

import "time"

// HistoryEventType identifies what kind of action a history entry records.
type HistoryEventType string

const (
	EventSupplyAdded           HistoryEventType = "supply_added"
	EventSupplyUpdated         HistoryEventType = "supply_updated"
	EventSupplyDeleted         HistoryEventType = "supply_deleted"
	EventSupplyQuantityChanged HistoryEventType = "supply_quantity_changed"
	EventItemStartedUsing      HistoryEventType = "item_started_using"
	EventItemStoppedUsing      HistoryEventType = "item_stopped_using"
	EventInsulinVolumeUpdated  HistoryEventType = "insulin_volume_updated"
	EventDeviceEndedEarly      HistoryEventType = "device_ended_early"
	EventTimerAdded            HistoryEventType = "timer_added"
	EventTimerUpdated          HistoryEventType = "timer_updated"
	EventTimerDeleted          HistoryEventType = "timer_deleted"
	EventTimerReset            HistoryEventType = "timer_reset"
	EventNotificationSent      HistoryEventType = "notification_sent"
	EventNotificationReceived  HistoryEventType = "notification_received"
	EventDataCleared           HistoryEventType = "data_cleared"
)

// EventTypeLabels maps event types to display names.
var EventTypeLabels = map[HistoryEventType]string{
	EventSupplyAdded:           "Supply Added",
	EventSupplyUpdated:         "Supply Updated",
	EventSupplyDeleted:         "Supply Deleted",
	EventSupplyQuantityChanged: "Quantity Changed",
	EventItemStartedUsing:      "Started Using",
	EventItemStoppedUsing:      "Stopped Using",
	EventInsulinVolumeUpdated:  "Insulin Used",
	EventDeviceEndedEarly:      "Device Ended Early",
	EventTimerAdded:            "Timer Added",
	EventTimerUpdated:          "Timer Updated",
	EventTimerDeleted:          "Timer Deleted",
	EventTimerReset:            "Timer Reset",
	EventNotificationSent:      "Notification Sent",
	EventNotificationReceived:  "Notification Received",
	EventDataCleared:           "Data Cleared",
}

// HistoryMetadata carries optional structured context for a history event.
type HistoryMetadata struct {
	SupplyID         string  `json:"supplyId,omitempty"`
	SupplyName       string  `json:"supplyName,omitempty"`
	SupplyCategory   string  `json:"supplyCategory,omitempty"`
	ItemID           string  `json:"itemId,omitempty"`
	TimerID          string  `json:"timerId,omitempty"`
	OldValue         float64 `json:"oldValue,omitempty"`
	NewValue         float64 `json:"newValue,omitempty"`
	QuantityChange   int     `json:"quantityChange,omitempty"`
	VolumeUsed       float64 `json:"volumeUsed,omitempty"`
	NotificationType string  `json:"notificationType,omitempty"`
}

// HistoryEvent is one entry in the action log.
type HistoryEvent struct {
	ID          string
	Timestamp   time.Time
	Type        HistoryEventType
	Title       string
	Description string
	Metadata    HistoryMetadata
}
