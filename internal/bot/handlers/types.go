package handlers

import (
	"github.com/vladimiradmaev/supplies-tracker/internal/domain"
	"github.com/vladimiradmaev/supplies-tracker/internal/notifications"
	"github.com/vladimiradmaev/supplies-tracker/internal/services"
)

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	Supplies domain.SupplyService
	Timers   domain.TimerService
	InUse    domain.InUseService
	History  domain.HistoryService
	Engine   *notifications.Engine
	Data     *services.DataService
}
