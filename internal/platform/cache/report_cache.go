package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_ledger/internal/core/ports/repositories"
)

const keyPrefix = "laporan"

// ReportCache stores live-computed reports in Redis. Keys embed the ledger
// revision, so a write makes every older key unreachable and the TTL reclaims it.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache instantiates the cache helper.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

var _ portsrepo.ReportCache = (*ReportCache)(nil)

func reportKey(period domain.Period, revision int64) string {
	return strings.Join([]string{keyPrefix, string(period.Type), period.Key, strconv.FormatInt(revision, 10)}, ":")
}

func (c *ReportCache) GetReport(ctx context.Context, period domain.Period, revision int64) (*domain.PeriodReport, error) {
	payload, err := c.client.Get(ctx, reportKey(period, revision)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewNotFoundError("cached report " + period.Key)
	}
	if err != nil {
		return nil, err
	}
	var report domain.PeriodReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *ReportCache) SetReport(ctx context.Context, report domain.PeriodReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, reportKey(report.Period, report.Revision), raw, c.ttl).Err()
}
