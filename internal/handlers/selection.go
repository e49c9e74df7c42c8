package handlers

import (
	"fmt"
	"net/url"
	"time"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/ui/templates"
)

// dashboardSignals mirrors the filter signals the page declares.
type dashboardSignals struct {
	Branches      []string `json:"branches"`
	ProductLines  []string `json:"productLines"`
	CustomerTypes []string `json:"customerTypes"`
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
}

// selection keeps only the date bounds that parse; a cleared or partial
// date input leaves fewer than two bounds and the pass halts downstream.
func (s dashboardSignals) selection() models.Selection {
	sel := models.Selection{
		Branches:      s.Branches,
		ProductLines:  s.ProductLines,
		CustomerTypes: s.CustomerTypes,
	}
	for _, v := range []string{s.StartDate, s.EndDate} {
		if t, err := time.Parse(templates.DateLayout, v); err == nil {
			sel.Dates = append(sel.Dates, t)
		}
	}
	return sel
}

// selectionFromQuery reads branch, product_line, customer_type (repeatable)
// and start/end. Absent categorical params select everything; absent start
// and end select the full date span.
func selectionFromQuery(q url.Values, defaults models.Selection) (models.Selection, error) {
	sel := defaults

	if v, ok := q["branch"]; ok {
		sel.Branches = v
	}
	if v, ok := q["product_line"]; ok {
		sel.ProductLines = v
	}
	if v, ok := q["customer_type"]; ok {
		sel.CustomerTypes = v
	}

	if !q.Has("start") && !q.Has("end") {
		return sel, nil
	}

	sel.Dates = nil
	for _, key := range []string{"start", "end"} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(templates.DateLayout, raw)
		if err != nil {
			return models.Selection{}, fmt.Errorf("invalid %s date %q: expected YYYY-MM-DD", key, raw)
		}
		sel.Dates = append(sel.Dates, t)
	}
	return sel, nil
}
