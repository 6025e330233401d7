package services

import (
	"github.com/sitewise/backend/internal/infrastructure/database"
	"github.com/sitewise/backend/internal/infrastructure/persistence"
	"github.com/sitewise/backend/pkg/componentregistry"
	"github.com/sitewise/backend/pkg/expression"
)

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	db *database.Connection

	TxManager   *persistence.TransactionManager
	Auth        *AuthService
	Sites       *SiteService
	Pages       *PageService
	Collections *CollectionService
	Items       *ItemService
	Validation  *ValidationService
	Scheduler   *SchedulerService
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(db *database.Connection) *ServiceManager {
	sm := &ServiceManager{db: db}

	sm.TxManager = persistence.NewTransactionManager(db)

	sites := persistence.NewSiteRepository(db.DB())
	pages := persistence.NewPageRepository(db.DB())
	pageRevs := persistence.NewPageRevisionRepository(db.DB())
	collections := persistence.NewCollectionRepository(db.DB())
	items := persistence.NewItemRepository(db.DB())
	itemRevs := persistence.NewItemRevisionRepository(db.DB())
	rules := persistence.NewRuleRepository(db.DB())
	schedules := persistence.NewScheduleRepository(db.DB())
	users := persistence.NewUserRepository(db.DB())
	sessions := persistence.NewSessionRepository(db.DB())

	registry := componentregistry.GetRegistry()

	sm.Auth = NewAuthService(users, sessions)
	sm.Sites = NewSiteService(sites)
	sm.Validation = NewValidationService(expression.NewEngine(), rules)
	sm.Pages = NewPageService(pages, pageRevs, sites, schedules, sm.TxManager, registry)
	sm.Collections = NewCollectionService(collections, items, rules, sites, sm.TxManager, sm.Validation)
	sm.Items = NewItemService(items, itemRevs, collections, schedules, sm.TxManager, sm.Validation)
	sm.Scheduler = NewSchedulerService(schedules, sm.Pages, sm.Items)

	return sm
}
