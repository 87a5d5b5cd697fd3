package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application"
	domaudit "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/audit"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	useCaseHistory      = "audit.history"
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

var (
	ErrMissingOrderNumber = errors.New("missing_order_number")
	ErrHistoryUnavailable = errors.New("history_unavailable")
)

type HistoryInput struct {
	OrderNumber string
	Limit       int64
}

// HistoryUseCase lists an order's audit trail, newest first.
type HistoryUseCase struct {
	repo domaudit.Repository
	in   application.Instruments
}

var _ application.UseCase[HistoryInput, []*domaudit.Entry] = (*HistoryUseCase)(nil)

func NewHistoryUseCase(repo domaudit.Repository, tel observability.Observability) *HistoryUseCase {
	return &HistoryUseCase{repo: repo, in: application.NewInstruments(tel, auditWorker)}
}

func (uc *HistoryUseCase) Execute(ctx context.Context, cmd HistoryInput) (_ []*domaudit.Entry, err error) {
	number := strings.TrimSpace(cmd.OrderNumber)
	ctx, run := uc.in.Begin(ctx, useCaseHistory, "OrderHistory", attribute.String("order.number", number))
	defer func() { run.End(err) }()

	if number == "" {
		run.Fail("MISSING_ORDER_NUMBER")
		return nil, ErrMissingOrderNumber
	}
	limit := cmd.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var entries []*domaudit.Entry
	err = uc.in.External(ctx, peerAuditStore, "list", func(ctx context.Context) error {
		var listErr error
		entries, listErr = uc.repo.List(ctx, number, limit)
		return listErr
	})
	if err != nil {
		run.Fail("HISTORY_UNAVAILABLE")
		return nil, fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
	}
	run.Annotate(observability.F("entries", len(entries)))
	return entries, nil
}
