package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adspilot/engine/internal/types"
)

// campaignRow mirrors a data_produk row.
type campaignRow struct {
	TokoID      int64   `db:"id_toko"`
	CampaignID  int64   `db:"campaign_id"`
	Title       string  `db:"title"`
	Status      string  `db:"status"`
	DailyBudget float64 `db:"daily_budget"`
}

// reportRow mirrors a campaign_reports row. Report fields are COALESCEd to 0
// in the query so comparisons stay well-defined for missing data.
type reportRow struct {
	Date       time.Time `db:"report_date"`
	Cost       float64   `db:"cost"`
	Click      float64   `db:"click"`
	Impression float64   `db:"impression"`
	BroadGMV   float64   `db:"broad_gmv"`
	BroadOrder float64   `db:"broad_order"`
	BroadROI   float64   `db:"broad_roi"`
	CTR        float64   `db:"ctr"`
	CPC        float64   `db:"cpc"`
	CPM        float64   `db:"cpm"`
}

// Campaigns is the metrics store: campaigns plus their daily report rows.
type Campaigns struct {
	q Queries
}

// NewCampaigns creates the campaign repository.
func NewCampaigns(q Queries) *Campaigns {
	return &Campaigns{q: q}
}

// GetCampaign loads one campaign with all its report rows.
// The full series loads in one shot so every condition of an evaluation
// reads from the same snapshot regardless of timeframe.
func (c *Campaigns) GetCampaign(ctx context.Context, tokoID types.TokoID, campaignID types.CampaignID) (*types.Campaign, error) {
	var row campaignRow
	if err := c.q.Get(ctx, "get-campaign", &row, int64(tokoID), int64(campaignID)); err != nil {
		if isNoRows(err) {
			return nil, types.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("get campaign %d/%d: %w", tokoID, campaignID, err)
	}

	var reports []reportRow
	if err := c.q.Select(ctx, "list-campaign-reports", &reports, int64(tokoID), int64(campaignID)); err != nil {
		return nil, fmt.Errorf("list reports %d/%d: %w", tokoID, campaignID, err)
	}

	campaign := &types.Campaign{
		CampaignID:  types.CampaignID(row.CampaignID),
		TokoID:      types.TokoID(row.TokoID),
		Title:       row.Title,
		Status:      row.Status,
		DailyBudget: row.DailyBudget,
		Reports:     make([]types.CampaignReport, 0, len(reports)),
	}
	for _, r := range reports {
		campaign.Reports = append(campaign.Reports, types.CampaignReport{
			Date:       r.Date,
			Cost:       r.Cost,
			Click:      r.Click,
			Impression: r.Impression,
			BroadGMV:   r.BroadGMV,
			BroadOrder: r.BroadOrder,
			BroadROI:   r.BroadROI,
			CTR:        r.CTR,
			CPC:        r.CPC,
			CPM:        r.CPM,
		})
	}

	return campaign, nil
}

// isNoRows reports whether err is the sqlx/database no-rows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
