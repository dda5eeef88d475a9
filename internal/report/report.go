// Package report derives dashboard metrics from the property and visit
// collections. All functions are pure over their inputs.
package report

import (
	"time"

	"github.com/sauma/portfolio-tracker/internal/dates"
	"github.com/sauma/portfolio-tracker/internal/property"
	"github.com/sauma/portfolio-tracker/internal/visit"
)

// ExecutiveActivity is one executive's visit counts.
type ExecutiveActivity struct {
	Name      string `json:"name"`
	ThisWeek  int    `json:"this_week"`
	ThisMonth int    `json:"this_month"`
	PrevMonth int    `json:"prev_month"`
}

// Executives counts each named executive's visits this week (from Sunday),
// this month, and the previous month.
func Executives(visits []*visit.Visit, executives []string, now time.Time) []ExecutiveActivity {
	weekStart := dates.Format(now.AddDate(0, 0, -int(now.Weekday())))
	monthStart := dates.Format(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
	prevMonthStart := dates.Format(time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location()))

	result := make([]ExecutiveActivity, 0, len(executives))
	for _, name := range executives {
		var a ExecutiveActivity
		a.Name = name
		for _, v := range visits {
			if v.Executive != name {
				continue
			}
			switch {
			case v.Date >= monthStart:
				a.ThisMonth++
				if v.Date >= weekStart {
					a.ThisWeek++
				}
			case v.Date >= prevMonthStart:
				a.PrevMonth++
			}
		}
		result = append(result, a)
	}

	return result
}

// StockSummary is the portfolio composition by status plus the average
// vacancy duration of available properties.
type StockSummary struct {
	Available      int `json:"available"`
	Leased         int `json:"leased"`
	NoticeGiven    int `json:"notice_given"`
	AvgVacancyDays int `json:"avg_vacancy_days"`
}

// Stock summarizes the portfolio. Vacancy days are counted from each
// available property's vacancy start date, or its creation date when the
// vacancy anchor is missing.
func Stock(properties []*property.Property, now time.Time) StockSummary {
	var s StockSummary
	today := dates.Format(now)

	totalDays := 0
	for _, p := range properties {
		switch p.Status {
		case property.StatusAvailable:
			s.Available++
			ref := dates.Format(p.CreatedAt)
			if p.Availability != nil && p.Availability.VacancyStartDate != "" {
				ref = p.Availability.VacancyStartDate
			}
			if days, err := dates.DaysBetween(ref, today); err == nil && days > 0 {
				totalDays += days
			}
		case property.StatusLeased:
			s.Leased++
		case property.StatusNoticeGiven:
			s.NoticeGiven++
		}
	}

	if s.Available > 0 {
		s.AvgVacancyDays = (totalDays + s.Available/2) / s.Available
	}

	return s
}
