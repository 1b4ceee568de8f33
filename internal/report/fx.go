package report

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/ledgerline/internal/report/service"
)

// Module provides report dependencies
var Module = fx.Module("report.service",
	fx.Provide(service.New),
)
