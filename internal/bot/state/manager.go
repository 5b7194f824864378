package state

import "sync"

// Conversation states
const (
	None                       = "none"
	AddingSupplyName           = "adding_supply_name"
	AddingSupplyQuantity       = "adding_supply_quantity"
	AddingTimerName            = "adding_timer_name"
	AwaitingInsulinVolume      = "awaiting_insulin_volume"
	AwaitingLowStockThreshold  = "awaiting_low_stock_threshold"
	AwaitingExpirationDays     = "awaiting_expiration_days"
	AwaitingDeviceReminderHrs  = "awaiting_device_reminder_hours"
	AwaitingQuantityAdjustment = "awaiting_quantity_adjustment"
	AwaitingUseTotalVolume     = "awaiting_use_total_volume"
	AwaitingUseDurationHours   = "awaiting_use_duration_hours"
	AwaitingUseGraceHours      = "awaiting_use_grace_hours"
)

// Manager tracks per-user conversation state and in-flight form data.
type Manager struct {
	userStates map[int64]string
	tempData   map[int64]map[string]string
	mu         sync.RWMutex
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		userStates: make(map[int64]string),
		tempData:   make(map[int64]map[string]string),
	}
}

// SetUserState sets the state for a user
func (m *Manager) SetUserState(userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userStates[userID] = state
}

// GetUserState gets the state for a user
func (m *Manager) GetUserState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, exists := m.userStates[userID]
	if !exists {
		return None
	}
	return state
}

// ClearUserState clears the state for a user
func (m *Manager) ClearUserState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.userStates, userID)
}

// SetTempData stores a form field collected mid-conversation.
func (m *Manager) SetTempData(userID int64, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tempData[userID] == nil {
		m.tempData[userID] = make(map[string]string)
	}
	m.tempData[userID][key] = value
}

// GetTempData gets a form field for a user
func (m *Manager) GetTempData(userID int64, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userData, exists := m.tempData[userID]
	if !exists {
		return "", false
	}
	value, exists := userData[key]
	return value, exists
}

// ClearTempData clears all form data for a user
func (m *Manager) ClearTempData(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tempData, userID)
}
