package importer

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/server"
	"github.com/flagkeep/flagkeep/pkg/service"
)

var _ Transactor = (*GormTransactor)(nil)

// GormTransactor runs imports in a database transaction. Audit events
// are held back until the transaction commits.
type GormTransactor struct {
	db      *gorm.DB
	config  service.ConfigSource
	auditor service.Auditor
	logger  *zap.Logger
}

// NewGormTransactor creates a GormTransactor.
func NewGormTransactor(db *gorm.DB, config service.ConfigSource, auditor service.Auditor, logger *zap.Logger) *GormTransactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormTransactor{db: db, config: config, auditor: auditor, logger: logger}
}

// InTransaction implements Transactor.
func (t *GormTransactor) InTransaction(ctx context.Context, fn func(Services) error) error {
	pending := &pendingAuditor{}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stores := server.GormStores(tx)
		return fn(Services{
			Projects: service.NewProjectService(stores.Projects, t.config, pending, t.logger),
			Roles:    service.NewRoleService(stores.Roles, pending),
			Groups:   service.NewGroupService(stores.Groups, stores.Users, stores.Roles, pending, t.logger),
			Segments: service.NewSegmentService(stores.Segments, stores.Projects, t.config, pending),
		})
	})
	if err != nil {
		return err
	}

	if t.auditor != nil {
		pending.flush(ctx, t.auditor)
	}
	return nil
}

type pendingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *pendingAuditor) Log(_ context.Context, event audit.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *pendingAuditor) flush(ctx context.Context, to service.Auditor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, event := range p.events {
		to.Log(ctx, event)
	}
	p.events = nil
}
