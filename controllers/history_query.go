package controllers

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/phillip/donation-hub-go/services"
	utils "github.com/phillip/donation-hub-go/utils"
)

// bindHistoryQuery reads filters, sorting and paging from the query string.
// The donation context is set by the caller.
func bindHistoryQuery(c *gin.Context) (services.HistoryQuery, error) {
	var raw struct {
		DonationType string `form:"donation_type" binding:"omitempty,oneof=all cash physical"`
		Status       string `form:"status"`
		TargetType   string `form:"target_type" binding:"omitempty,oneof=all campaign organization general"`
		StartDate    string `form:"start_date"`
		EndDate      string `form:"end_date"`
		MinAmount    string `form:"min_amount"`
		MaxAmount    string `form:"max_amount"`
		SortBy       string `form:"sort_by" binding:"omitempty,oneof=created_at amount donor_name"`
		SortDir      string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
		Page         int    `form:"page" binding:"omitempty,min=1"`
		PageSize     int    `form:"page_size" binding:"omitempty,min=1"`
	}
	if err := c.ShouldBindQuery(&raw); err != nil {
		return services.HistoryQuery{}, err
	}

	q := services.HistoryQuery{
		Filters: services.Filters{
			DonationType: raw.DonationType,
			Status:       raw.Status,
			TargetType:   raw.TargetType,
		},
		Sorting: services.Sorting{
			Field:     services.SortField(raw.SortBy),
			Direction: services.SortDirection(raw.SortDir),
		},
		Page:     raw.Page,
		PageSize: raw.PageSize,
	}

	// --- Date range ---
	if raw.StartDate != "" || raw.EndDate != "" {
		var r services.DateRange
		if raw.StartDate != "" {
			start, _, err := utils.ParseDate(raw.StartDate)
			if err != nil {
				return q, fmt.Errorf("start_date: %w", err)
			}
			r.Start = start
		}
		if raw.EndDate != "" {
			end, err := utils.ParseRangeEnd(raw.EndDate)
			if err != nil {
				return q, fmt.Errorf("end_date: %w", err)
			}
			r.End = end
		}
		if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
			return q, fmt.Errorf("end_date is before start_date")
		}
		q.Filters.DateRange = &r
	}

	// --- Amount range ---
	var err error
	if q.Filters.MinAmount, err = optionalFloat("min_amount", raw.MinAmount); err != nil {
		return q, err
	}
	if q.Filters.MaxAmount, err = optionalFloat("max_amount", raw.MaxAmount); err != nil {
		return q, err
	}
	return q, nil
}

func optionalFloat(name, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &v, nil
}
