package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"foodai-backend/internal/model"
	"foodai-backend/internal/parse"
	"foodai-backend/internal/store"
)

const (
	defaultAvgTicket = 1850.0
	defaultCapacity  = 40
	minCapacity      = 30

	// maxPeakWindow bounds the hourly series used for peak detection.
	maxPeakWindow = 2 * 365 * 24 * time.Hour
)

var weekdayNames = [7]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// Insights is the per-restaurant predictive report.
type Insights struct {
	RestaurantID   string     `json:"restaurant_id"`
	RestaurantName string     `json:"restaurant_name"`
	GeneratedAt    time.Time  `json:"generated_at"`
	Capacity       int        `json:"capacity"`
	AvgTicket      float64    `json:"avg_ticket"`
	Indicators     Indicators `json:"indicators"`
}

type Indicators struct {
	DemandCapacity DemandCapacity `json:"demand_capacity"`
	Cancellations  Cancellations  `json:"cancellations"`
	Timing         Timing         `json:"timing_behavior"`
	Economics      Economics      `json:"economics"`
	Segmentation   Segmentation   `json:"segmentation"`
	Operations     Operations     `json:"operations"`
	Trend          Trend          `json:"trend_seasonality"`
}

type DemandCapacity struct {
	NextPeak        *Peak           `json:"next_peak"`
	HourlyOccupancy []HourOccupancy `json:"hourly_occupancy"`
	WeekdayDemand   []WeekdayDemand `json:"weekday_demand"`
}

type Peak struct {
	At                time.Time `json:"datetime"`
	Weekday           string    `json:"weekday"`
	Hour              string    `json:"hour"`
	ExpectedGuests    float64   `json:"expected_guests"`
	ExpectedOccupancy float64   `json:"expected_occupancy"`
}

type HourOccupancy struct {
	Hour              string  `json:"hour"`
	ProjectedGuests   float64 `json:"projected_guests"`
	ExpectedOccupancy float64 `json:"expected_occupancy"`
}

type WeekdayDemand struct {
	Weekday       string  `json:"weekday"`
	RelativeToAvg float64 `json:"relative_to_avg"`
	Level         string  `json:"level"` // above | below | average
}

type Cancellations struct {
	BaselineRate   float64           `json:"baseline_rate"`
	Risk           []ReservationRisk `json:"cancellation_risk_by_reservation"`
	ProneCustomers []CustomerRate    `json:"users_prone_to_cancel"`
	Loyal          LoyalForecast     `json:"loyal_customers_forecast"`
}

type ReservationRisk struct {
	ReservationID string    `json:"reservation_id"`
	Customer      string    `json:"customer"`
	ScheduledFor  time.Time `json:"scheduled_for"`
	Probability   float64   `json:"probability"`
}

type CustomerRate struct {
	Customer   string  `json:"customer"`
	CancelRate float64 `json:"cancel_rate"`
}

type LoyalForecast struct {
	ExpectedNextMonth int     `json:"expected_next_month"`
	TrendVsLastMonth  float64 `json:"trend_vs_last_month"`
}

type Timing struct {
	AverageLeadDays float64         `json:"average_lead_time_days"`
	LeadTrendPct    float64         `json:"lead_time_trend_vs_last_month"`
	PopularWindows  []BookingWindow `json:"popular_booking_windows"`
}

type BookingWindow struct {
	Hour       string  `json:"hour"`
	Percentage float64 `json:"percentage"`
}

type Economics struct {
	RevenueNextDays []DailyRevenue `json:"expected_revenue_next_days"`
	ExpectedTicket  float64        `json:"expected_ticket"`
	ProjectedLoss   float64        `json:"projected_cancellation_loss"`
}

type DailyRevenue struct {
	Date      string  `json:"date"`
	Projected float64 `json:"projected_revenue"`
}

type Segmentation struct {
	Planners    int          `json:"planners"`
	Spontaneous int          `json:"spontaneous"`
	Premium     int          `json:"premium"`
	CityGrowth  []CityGrowth `json:"city_growth"`
}

type CityGrowth struct {
	City      string  `json:"city"`
	GrowthPct float64 `json:"growth_pct"`
}

type Operations struct {
	ExtraCapacity []SlotAdvice `json:"extra_capacity_recommendations"`
	LowDemand     []SlotAdvice `json:"low_demand_alerts"`
}

type SlotAdvice struct {
	Weekday           string  `json:"weekday"`
	Hour              string  `json:"hour"`
	ExtraTables       int     `json:"suggested_extra_tables,omitempty"`
	ExpectedOccupancy float64 `json:"expected_occupancy"`
}

type Trend struct {
	MonthlyTrendPct float64   `json:"monthly_trend_pct"`
	BestMonth       string    `json:"best_month,omitempty"`
	BestMonthCount  int       `json:"best_month_reservations,omitempty"`
	MaxSlot         *SlotInfo `json:"max_expected_slot"`
}

type SlotInfo struct {
	Weekday string `json:"weekday"`
	Hour    string `json:"hour"`
}

// booking is a reservation with its derived columns.
type booking struct {
	id        string
	at        time.Time
	date      string
	weekday   int
	hour      int
	month     int // year*12 + month-1
	guests    int
	status    model.Status
	cancelled bool
	leadDays  float64
	customer  string
	city      string
	revenue   float64
}

// BuildInsights computes every indicator for restaurant from its reservations
// as of now.
func BuildInsights(restaurant model.Restaurant, reservations []model.Reservation, now time.Time) (*Insights, error) {
	now = now.UTC()
	avgTicket := averageTicket(restaurant, reservations)
	rows := prepare(reservations, avgTicket)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no reservations: %w", store.ErrNotFound)
	}
	capacity := inferCapacity(restaurant, rows)

	return &Insights{
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
		GeneratedAt:    now,
		Capacity:       capacity,
		AvgTicket:      round(avgTicket, 2),
		Indicators: Indicators{
			DemandCapacity: DemandCapacity{
				NextPeak:        nextPeak(rows, capacity, now),
				HourlyOccupancy: hourlyOccupancy(rows, capacity),
				WeekdayDemand:   weekdayDemand(rows),
			},
			Cancellations: cancellations(rows, now),
			Timing:        timing(rows, now),
			Economics:     economics(rows, avgTicket, now),
			Segmentation:  segmentation(rows),
			Operations:    operations(rows, capacity),
			Trend:         trend(rows),
		},
	}, nil
}

func prepare(reservations []model.Reservation, avgTicket float64) []booking {
	rows := make([]booking, 0, len(reservations))
	for _, r := range reservations {
		slot, err := parse.ParseSlot(r.ReservationDate, r.ReservationTime)
		if err != nil {
			continue
		}
		at := slot.At(time.UTC)
		b := booking{
			id:       r.ID,
			at:       at,
			date:     slot.Date.Format(parse.DateLayout),
			weekday:  slot.Weekday,
			hour:     slot.Hour,
			month:    at.Year()*12 + int(at.Month()) - 1,
			guests:   max(r.GuestsCount, 1),
			status:   model.Status(strings.ToLower(string(r.Status))),
			customer: firstNonEmpty(r.CustomerEmail, r.CustomerName, "customer"),
			city:     firstNonEmpty(r.CustomerCity, "unknown"),
		}
		b.cancelled = b.status.Cancelled()

		if r.CreatedAt.IsZero() {
			b.leadDays = 2.8
			if b.status == model.StatusPending {
				b.leadDays = 1.5
			}
		} else {
			b.leadDays = math.Max(at.Sub(r.CreatedAt).Hours()/24, 0)
		}

		if r.TotalAmount != nil {
			b.revenue = *r.TotalAmount
		} else {
			b.revenue = float64(b.guests) * avgTicket
		}
		rows = append(rows, b)
	}
	return rows
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func averageTicket(restaurant model.Restaurant, reservations []model.Reservation) float64 {
	if restaurant.AvgTicket != nil && *restaurant.AvgTicket > 0 {
		return *restaurant.AvgTicket
	}
	sum, n := 0.0, 0
	for _, r := range reservations {
		if r.TotalAmount != nil {
			sum += *r.TotalAmount
			n++
		}
	}
	if n > 0 {
		return sum / float64(n)
	}
	return defaultAvgTicket
}

// inferCapacity prefers the configured capacity, else four times the 90th
// percentile party size with a floor of minCapacity.
func inferCapacity(restaurant model.Restaurant, rows []booking) int {
	if restaurant.Capacity != nil && *restaurant.Capacity > 0 {
		return *restaurant.Capacity
	}
	if len(rows) == 0 {
		return defaultCapacity
	}
	guests := make([]float64, len(rows))
	for i, b := range rows {
		guests[i] = float64(b.guests)
	}
	return max(int(quantile(guests, 0.9)*4), minCapacity)
}

// quantile uses linear interpolation between closest ranks.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func hourLabel(h int) string { return fmt.Sprintf("%02d:00", h) }

func occupancyPct(guests float64, capacity int) float64 {
	return round(math.Min(1, guests/float64(max(capacity, 1)))*100, 1)
}

// nextPeak smooths hourly guest totals with an exponential moving average
// (span 6) and projects the busiest weekday/hour onto its next occurrence.
func nextPeak(rows []booking, capacity int, now time.Time) *Peak {
	first, last := rows[0].at, rows[0].at
	for _, b := range rows {
		if b.at.Before(first) {
			first = b.at
		}
		if b.at.After(last) {
			last = b.at
		}
	}
	last = last.Truncate(time.Hour)
	first = first.Truncate(time.Hour)
	if last.Sub(first) > maxPeakWindow {
		first = last.Add(-maxPeakWindow)
	}
	n := int(last.Sub(first)/time.Hour) + 1
	series := make([]float64, n)
	for _, b := range rows {
		if b.at.Before(first) {
			continue
		}
		series[int(b.at.Truncate(time.Hour).Sub(first)/time.Hour)] += float64(b.guests)
	}

	const alpha = 2.0 / (6 + 1)
	smoothed := series[0]
	bestIdx, bestVal := 0, smoothed
	for i := 1; i < n; i++ {
		smoothed = alpha*series[i] + (1-alpha)*smoothed
		if smoothed > bestVal {
			bestIdx, bestVal = i, smoothed
		}
	}
	peak := first.Add(time.Duration(bestIdx) * time.Hour)
	next := nextOccurrence(parse.Weekday(peak), peak.Hour(), now)
	return &Peak{
		At:                next,
		Weekday:           weekdayNames[parse.Weekday(next)],
		Hour:              hourLabel(next.Hour()),
		ExpectedGuests:    round(bestVal, 1),
		ExpectedOccupancy: occupancyPct(bestVal, capacity),
	}
}

func nextOccurrence(weekday, hour int, now time.Time) time.Time {
	days := (weekday - parse.Weekday(now) + 7) % 7
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	candidate := midnight.AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// hourlyOccupancy averages, per hour, the guest total of the days that had bookings at that hour.
func hourlyOccupancy(rows []booking, capacity int) []HourOccupancy {
	type key struct {
		date string
		hour int
	}
	daily := make(map[key]int)
	for _, b := range rows {
		daily[key{b.date, b.hour}] += b.guests
	}
	var sums [24]float64
	var days [24]int
	for k, guests := range daily {
		sums[k.hour] += float64(guests)
		days[k.hour]++
	}
	out := make([]HourOccupancy, 24)
	for h := range out {
		mean := 0.0
		if days[h] > 0 {
			mean = sums[h] / float64(days[h])
		}
		out[h] = HourOccupancy{Hour: hourLabel(h), ProjectedGuests: round(mean, 1), ExpectedOccupancy: occupancyPct(mean, capacity)}
	}
	return out
}

func weekdayDemand(rows []booking) []WeekdayDemand {
	var totals [7]float64
	for _, b := range rows {
		totals[b.weekday] += float64(b.guests)
	}
	avg := mean(totals[:])
	if avg == 0 {
		avg = 1
	}
	out := make([]WeekdayDemand, 7)
	for d, v := range totals {
		delta := v/avg - 1
		level := "average"
		if delta >= 0.15 {
			level = "above"
		} else if delta <= -0.15 {
			level = "below"
		}
		out[d] = WeekdayDemand{Weekday: weekdayNames[d], RelativeToAvg: round(delta*100, 1), Level: level}
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func cancelBaseline(rows []booking) float64 {
	n := 0
	for _, b := range rows {
		if b.cancelled {
			n++
		}
	}
	if n == 0 {
		return 0.05
	}
	return float64(n) / float64(len(rows))
}

func customerCancelRates(rows []booking) map[string]float64 {
	total := make(map[string]int)
	cancelled := make(map[string]int)
	for _, b := range rows {
		total[b.customer]++
		if b.cancelled {
			cancelled[b.customer]++
		}
	}
	rates := make(map[string]float64, len(total))
	for c, n := range total {
		rates[c] = float64(cancelled[c]) / float64(n)
	}
	return rates
}

// upcoming returns future bookings soonest first, or the latest past bookings when none are ahead.
func upcoming(rows []booking, now time.Time, limit int) []booking {
	var future []booking
	for _, b := range rows {
		if !b.at.Before(now) {
			future = append(future, b)
		}
	}
	if len(future) > 0 {
		sort.SliceStable(future, func(i, j int) bool { return future[i].at.Before(future[j].at) })
	} else {
		future = append(future, rows...)
		sort.SliceStable(future, func(i, j int) bool { return future[i].at.After(future[j].at) })
	}
	if len(future) > limit {
		future = future[:limit]
	}
	return future
}

func cancellations(rows []booking, now time.Time) Cancellations {
	baseline := cancelBaseline(rows)
	rates := customerCancelRates(rows)

	risk := []ReservationRisk{}
	for _, b := range upcoming(rows, now, 5) {
		history, ok := rates[b.customer]
		if !ok {
			history = baseline
		}
		lead := 0.0
		if b.leadDays < 1 {
			lead = 0.2
		} else if b.leadDays > 5 {
			lead = -0.05
		}
		size := 0.05
		if b.guests >= 6 {
			size = -0.05
		}
		pending := 0.0
		if b.status == model.StatusPending {
			pending = 0.1
		}
		p := baseline*0.4 + history*0.4 + lead + size + pending
		p = math.Min(math.Max(p, 0.05), 0.95)
		risk = append(risk, ReservationRisk{ReservationID: b.id, Customer: b.customer, ScheduledFor: b.at, Probability: round(p, 2)})
	}

	prone := []CustomerRate{}
	for c, rate := range rates {
		if rate >= baseline+0.1 {
			prone = append(prone, CustomerRate{Customer: c, CancelRate: round(rate, 2)})
		}
	}
	sort.Slice(prone, func(i, j int) bool {
		if prone[i].CancelRate != prone[j].CancelRate {
			return prone[i].CancelRate > prone[j].CancelRate
		}
		return prone[i].Customer < prone[j].Customer
	})
	if len(prone) > 5 {
		prone = prone[:5]
	}

	return Cancellations{
		BaselineRate:   round(baseline, 4),
		Risk:           risk,
		ProneCustomers: prone,
		Loyal:          loyalForecast(rows),
	}
}

// loyalForecast fits a line through the monthly count of customers who booked
// at least twice in a month and extrapolates one month ahead.
func loyalForecast(rows []booking) LoyalForecast {
	type key struct {
		month    int
		customer string
	}
	visits := make(map[key]int)
	customers := make(map[string]struct{})
	for _, b := range rows {
		visits[key{b.month, b.customer}]++
		customers[b.customer] = struct{}{}
	}
	loyalPerMonth := make(map[int]int)
	for k, n := range visits {
		if n >= 2 {
			loyalPerMonth[k.month]++
		}
	}
	if len(loyalPerMonth) == 0 {
		return LoyalForecast{ExpectedNextMonth: max(int(float64(len(customers))*0.2), 1)}
	}

	months := make([]int, 0, len(loyalPerMonth))
	for m := range loyalPerMonth {
		months = append(months, m)
	}
	sort.Ints(months)
	y := make([]float64, len(months))
	for i, m := range months {
		y[i] = float64(loyalPerMonth[m])
	}

	forecast := y[len(y)-1]
	trendPct := 0.0
	if len(y) >= 2 {
		slope, intercept := linearFit(y)
		forecast = slope*float64(len(y)) + intercept
		if prev := y[len(y)-2]; prev > 0 {
			trendPct = (y[len(y)-1] - prev) / prev * 100
		}
	}
	return LoyalForecast{
		ExpectedNextMonth: int(math.Round(math.Max(forecast, 0))),
		TrendVsLastMonth:  round(trendPct, 1),
	}
}

// linearFit returns the least squares line through (i, y[i]).
func linearFit(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	var sx, sy, sxx, sxy float64
	for i, v := range y {
		x := float64(i)
		sx += x
		sy += v
		sxx += x * x
		sxy += x * v
	}
	denom := n*sxx - sx*sx
	if denom == 0 {
		return 0, sy / n
	}
	slope = (n*sxy - sx*sy) / denom
	intercept = (sy - slope*sx) / n
	return slope, intercept
}

func timing(rows []booking, now time.Time) Timing {
	lead := make([]float64, len(rows))
	for i, b := range rows {
		lead[i] = b.leadDays
	}

	recentCut := now.AddDate(0, 0, -30)
	previousCut := recentCut.AddDate(0, 0, -30)
	var recent, previous []float64
	for _, b := range rows {
		switch {
		case !b.at.Before(recentCut):
			recent = append(recent, b.leadDays)
		case !b.at.Before(previousCut):
			previous = append(previous, b.leadDays)
		}
	}
	trendPct := 0.0
	if len(recent) > 0 && len(previous) > 0 {
		if prev := mean(previous); prev > 0 {
			trendPct = (mean(recent) - prev) / prev * 100
		}
	}

	var perHour [24]int
	for _, b := range rows {
		perHour[b.hour]++
	}
	hours := make([]int, 0, 24)
	for h, n := range perHour {
		if n > 0 {
			hours = append(hours, h)
		}
	}
	sort.SliceStable(hours, func(i, j int) bool { return perHour[hours[i]] > perHour[hours[j]] })
	if len(hours) > 3 {
		hours = hours[:3]
	}
	windows := make([]BookingWindow, len(hours))
	for i, h := range hours {
		windows[i] = BookingWindow{Hour: hourLabel(h), Percentage: round(float64(perHour[h])/float64(len(rows))*100, 1)}
	}

	return Timing{
		AverageLeadDays: round(mean(lead), 2),
		LeadTrendPct:    round(trendPct, 1),
		PopularWindows:  windows,
	}
}

func economics(rows []booking, avgTicket float64, now time.Time) Economics {
	var weekdayRevenue [7]float64
	daily := make(map[string]float64)
	revenue, guests := 0.0, 0
	for _, b := range rows {
		weekdayRevenue[b.weekday] += b.revenue
		daily[b.date] += b.revenue
		revenue += b.revenue
		guests += b.guests
	}
	avgWeekday := mean(weekdayRevenue[:])

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if len(dates) > 7 {
		dates = dates[len(dates)-7:]
	}
	recent := make([]float64, len(dates))
	for i, d := range dates {
		recent[i] = daily[d]
	}
	base := mean(recent)
	if base == 0 {
		base = avgTicket * 10
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	forecast := make([]DailyRevenue, 7)
	for i := range forecast {
		day := today.AddDate(0, 0, i)
		multiplier := 1.0
		if avgWeekday > 0 {
			multiplier = weekdayRevenue[parse.Weekday(day)] / avgWeekday
		}
		forecast[i] = DailyRevenue{Date: day.Format(parse.DateLayout), Projected: round(base*multiplier, 2)}
	}

	return Economics{
		RevenueNextDays: forecast,
		ExpectedTicket:  round(revenue/float64(max(guests, 1)), 2),
		ProjectedLoss:   round(projectedLoss(rows, now), 2),
	}
}

// projectedLoss applies the baseline cancellation rate to upcoming revenue,
// or to the first ten bookings when nothing is ahead.
func projectedLoss(rows []booking, now time.Time) float64 {
	var focus []booking
	for _, b := range rows {
		if !b.at.Before(now) {
			focus = append(focus, b)
		}
	}
	if len(focus) == 0 {
		focus = rows[:min(len(rows), 10)]
	}
	sum := 0.0
	for _, b := range focus {
		sum += b.revenue
	}
	return cancelBaseline(rows) * sum
}

func segmentation(rows []booking) Segmentation {
	var s Segmentation
	total := make(map[string]int)
	cancelled := make(map[string]int)
	for _, b := range rows {
		if b.leadDays >= 3 {
			s.Planners++
		}
		if b.leadDays < 1 {
			s.Spontaneous++
		}
		total[b.customer]++
		if b.cancelled {
			cancelled[b.customer]++
		}
	}
	for c, n := range total {
		if n >= 3 && cancelled[c] == 0 {
			s.Premium++
		}
	}
	s.CityGrowth = cityGrowth(rows)
	return s
}

// cityGrowth compares each city's bookings in the latest month with the month before.
func cityGrowth(rows []booking) []CityGrowth {
	cities := make(map[string]struct{})
	latest := rows[0].month
	for _, b := range rows {
		cities[b.city] = struct{}{}
		if b.month > latest {
			latest = b.month
		}
	}
	out := []CityGrowth{}
	if len(cities) <= 1 {
		return out
	}

	current := make(map[string]int)
	previous := make(map[string]int)
	for _, b := range rows {
		switch b.month {
		case latest:
			current[b.city]++
		case latest - 1:
			previous[b.city]++
		}
	}
	for city, n := range current {
		growth := 100.0
		if prev := previous[city]; prev > 0 {
			growth = float64(n-prev) / float64(prev) * 100
		}
		out = append(out, CityGrowth{City: city, GrowthPct: round(growth, 1)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GrowthPct != out[j].GrowthPct {
			return out[i].GrowthPct > out[j].GrowthPct
		}
		return out[i].City < out[j].City
	})
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

type slotKey struct{ weekday, hour int }

// slots returns the weekday/hour keys present in rows in calendar order.
func slots(rows []booking, add func(k slotKey, b booking)) []slotKey {
	seen := make(map[slotKey]struct{})
	var keys []slotKey
	for _, b := range rows {
		k := slotKey{b.weekday, b.hour}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		add(k, b)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].weekday != keys[j].weekday {
			return keys[i].weekday < keys[j].weekday
		}
		return keys[i].hour < keys[j].hour
	})
	return keys
}

func operations(rows []booking, capacity int) Operations {
	sums := make(map[slotKey]float64)
	counts := make(map[slotKey]int)
	keys := slots(rows, func(k slotKey, b booking) {
		sums[k] += float64(b.guests)
		counts[k]++
	})

	ops := Operations{ExtraCapacity: []SlotAdvice{}, LowDemand: []SlotAdvice{}}
	for _, k := range keys {
		occupancy := sums[k] / float64(counts[k]) / float64(max(capacity, 1))
		advice := SlotAdvice{Weekday: weekdayNames[k.weekday], Hour: hourLabel(k.hour), ExpectedOccupancy: round(occupancy*100, 1)}
		switch {
		case occupancy >= 0.85 && len(ops.ExtraCapacity) < 3:
			advice.ExtraTables = max(int(math.Round(occupancy*10-8)), 1)
			ops.ExtraCapacity = append(ops.ExtraCapacity, advice)
		case occupancy <= 0.4 && len(ops.LowDemand) < 3:
			ops.LowDemand = append(ops.LowDemand, advice)
		}
	}
	return ops
}

func trend(rows []booking) Trend {
	first, last := rows[0].month, rows[0].month
	for _, b := range rows {
		first = min(first, b.month)
		last = max(last, b.month)
	}
	monthly := make([]int, last-first+1)
	for _, b := range rows {
		monthly[b.month-first]++
	}

	var t Trend
	if n := len(monthly); n >= 2 && monthly[n-2] > 0 {
		t.MonthlyTrendPct = round(float64(monthly[n-1]-monthly[n-2])/float64(monthly[n-2])*100, 1)
	}
	if len(monthly) >= 3 {
		best := 0
		for i, n := range monthly {
			if n > monthly[best] {
				best = i
			}
		}
		m := first + best
		t.BestMonth = time.Date(m/12, time.Month(m%12+1), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
		t.BestMonthCount = monthly[best]
	}

	guests := make(map[slotKey]int)
	keys := slots(rows, func(k slotKey, b booking) { guests[k] += b.guests })
	best := keys[0]
	for _, k := range keys[1:] {
		if guests[k] > guests[best] {
			best = k
		}
	}
	t.MaxSlot = &SlotInfo{Weekday: weekdayNames[best.weekday], Hour: hourLabel(best.hour)}
	return t
}
