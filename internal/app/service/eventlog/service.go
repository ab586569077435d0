package eventlog

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ovenline/bakehouse/internal/models"
	"github.com/ovenline/bakehouse/pkg/logctx"
	"github.com/ovenline/bakehouse/pkg/tool"
)

// Service persists webhook delivery records for troubleshooting. Writes are
// fire-and-forget: losing a log row must never fail event handling.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a payment event log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, entry *models.PaymentEventLog) {
	go func() {
		if entry == nil {
			return
		}
		if entry.ID == "" {
			entry.ID = tool.GenerateUUIDV7()
		}
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save payment event log: %v", err)
		}
	}()
}

var Module = fx.Options(
	fx.Provide(New),
)
