package bankapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/filter"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/statement"
)

var _ statement.Source = (*Client)(nil)

// ListTransactions fetches one page of the statement listing.
func (c *Client) ListTransactions(ctx context.Context, q filter.Query) (*statement.Page, error) {
	env, err := c.do(ctx, http.MethodGet, c.cfg.ListPath, listParams(q), nil, true)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s", common.ErrRemoteFailure, env.failure())
	}

	records, err := decodeRecords(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRemoteFailure, err)
	}

	page := &statement.Page{Records: records}
	if p := env.Pagination; p != nil {
		page.Pagination = model.Pagination{
			Total:       p.Total,
			Limit:       p.Limit,
			Offset:      p.Offset,
			CurrentPage: p.CurrentPage,
			TotalPages:  p.TotalPages,
			HasMore:     p.HasMore,
		}
	}
	return page, nil
}

func listParams(q filter.Query) url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("offset", strconv.Itoa(q.Offset))
	if q.StartDate != nil {
		v.Set("startDate", q.StartDate.Format(time.DateOnly))
	}
	if q.EndDate != nil {
		v.Set("endDate", q.EndDate.Format(time.DateOnly))
	}
	if q.TransactionType != filter.TypeAny {
		v.Set("transactionType", string(q.TransactionType))
	}
	setAmount(v, "minAmount", q.MinAmount)
	setAmount(v, "maxAmount", q.MaxAmount)
	setAmount(v, "exactAmount", q.ExactAmount)
	if q.EndToEnd != "" {
		v.Set("endToEnd", q.EndToEnd)
	} else if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Order != filter.OrderNone {
		v.Set("order", string(q.Order))
	}
	if q.AccountID != "" {
		v.Set("accountId", q.AccountID)
	}
	return v
}

func setAmount(v url.Values, key string, amount *float64) {
	if amount != nil {
		v.Set(key, strconv.FormatFloat(*amount, 'f', 2, 64))
	}
}

// VerifyResult is the backend's answer to an end-to-end lookup.
type VerifyResult struct {
	Record   model.RawRecord
	EndToEnd string
	Message  string
	Found    bool
}

// VerifyEndToEnd asks the backend whether a settled transfer with the given
// end-to-end code exists. A 404 is reported as not found, not as an error.
func (c *Client) VerifyEndToEnd(ctx context.Context, code string) (*VerifyResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("end-to-end code is required")
	}

	res := &VerifyResult{EndToEnd: code}
	env, err := c.do(ctx, http.MethodGet, c.cfg.VerifyPath, url.Values{"endToEnd": {code}}, nil, true)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return res, nil
		}
		return nil, err
	}

	res.Message = env.Message
	if !env.Success {
		return res, nil
	}
	records, err := decodeRecords(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRemoteFailure, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		res.Found = true
		res.Record = records[0]
	}
	return res, nil
}

// SyncRequest asks the backend to re-ingest a date range.
type SyncRequest struct {
	From      time.Time
	To        time.Time
	AccountID string
}

// SyncAck is the backend's acknowledgement of a sync trigger.
type SyncAck struct {
	JobID    string
	Message  string
	Accepted bool
}

type syncBody struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	AccountID string `json:"accountId,omitempty"`
}

// TriggerSync starts a provider-side ingestion for the range and returns as
// soon as the backend acknowledges it. The job is not polled.
func (c *Client) TriggerSync(ctx context.Context, req SyncRequest) (*SyncAck, error) {
	if req.To.Before(req.From) {
		return nil, fmt.Errorf("sync end date %s is before start date %s",
			req.To.Format(time.DateOnly), req.From.Format(time.DateOnly))
	}

	body := syncBody{
		StartDate: req.From.Format(time.DateOnly),
		EndDate:   req.To.Format(time.DateOnly),
		AccountID: req.AccountID,
	}
	env, err := c.do(ctx, http.MethodPost, c.cfg.SyncPath, nil, body, false)
	if err != nil {
		return nil, err
	}

	ack := &SyncAck{Accepted: env.Success, Message: env.Message}
	if records, err := decodeRecords(env.Data); err == nil && len(records) > 0 {
		ack.JobID = records[0].String("jobId")
		if ack.JobID == "" {
			ack.JobID = records[0].String("id")
		}
	}
	c.logger.Info("Sync triggered",
		"start_date", body.StartDate,
		"end_date", body.EndDate,
		"accepted", ack.Accepted,
		"job_id", ack.JobID)
	return ack, nil
}
