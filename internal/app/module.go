package app

import (
	"time"

	"github.com/ovenline/bakehouse/internal/app/api/server"
	"github.com/ovenline/bakehouse/internal/app/service/batch"
	"github.com/ovenline/bakehouse/internal/app/service/billing"
	"github.com/ovenline/bakehouse/internal/app/service/eventlog"
	"github.com/ovenline/bakehouse/internal/app/service/order"
	"github.com/ovenline/bakehouse/internal/app/service/paymentevent"
	"github.com/ovenline/bakehouse/internal/app/service/statistics"
	"github.com/ovenline/bakehouse/internal/app/service/subscription"
	"github.com/ovenline/bakehouse/internal/platform/db"
	"github.com/ovenline/bakehouse/internal/platform/payments"
	"github.com/ovenline/bakehouse/pkg/config"
	"github.com/ovenline/bakehouse/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	payments.Module,
	server.Module,
	batch.Module,
	order.Module,
	eventlog.Module,
	paymentevent.Module,
	subscription.Module,
	billing.Module,
	statistics.Module,
)
