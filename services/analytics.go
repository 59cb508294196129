package services

import (
	"log"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"chorescape-server/models"
	"chorescape-server/types"
	"chorescape-server/utils"
)

// AnalyticsService runs the aggregate queries behind the admin dashboard.
// Dashboard reads degrade to zeroed payloads on datastore failure so the
// admin UI keeps rendering; the one exception is revenue, which surfaces
// errors because financial numbers must never silently read as zero.
type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

type DashboardStats struct {
	Users        StatTotal         `json:"users"`
	Workers      StatTotal         `json:"workers"`
	Bookings     DashboardBookings `json:"bookings"`
	Revenue      StatAmount        `json:"revenue"`
	Contact      DashboardContact  `json:"contact"`
	Applications DashboardApps     `json:"applications"`
}

type StatTotal struct {
	Total int64 `json:"total"`
}

type StatAmount struct {
	Total float64 `json:"total"`
}

type DashboardBookings struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Assigned  int64 `json:"assigned"`
	Completed int64 `json:"completed"`
}

type DashboardContact struct {
	NewMessages int64 `json:"newMessages"`
}

type DashboardApps struct {
	Pending int64 `json:"pending"`
}

// count runs a count query and degrades to zero on failure.
func (s *AnalyticsService) count(query *gorm.DB) int64 {
	var n int64
	if err := query.Count(&n).Error; err != nil {
		log.Printf("analytics: count query failed: %v", err)
		return 0
	}
	return n
}

func (s *AnalyticsService) sum(query *gorm.DB, column string) float64 {
	var total *float64
	if err := query.Select("SUM(" + column + ")").Scan(&total).Error; err != nil {
		log.Printf("analytics: sum query failed: %v", err)
		return 0
	}
	if total == nil {
		return 0
	}
	return *total
}

// Stats assembles the admin dashboard counters. Individual query
// failures zero that counter rather than failing the whole payload.
func (s *AnalyticsService) Stats() *DashboardStats {
	activeStatuses := []models.BookingStatus{
		models.BookingStatusAssigned,
		models.BookingStatusAccepted,
		models.BookingStatusInProgress,
	}

	return &DashboardStats{
		Users: StatTotal{
			Total: s.count(s.db.Model(&models.Profile{}).Where("role = ?", models.RoleCustomer)),
		},
		Workers: StatTotal{
			Total: s.count(s.db.Model(&models.Profile{}).Where("role = ?", models.RoleWorker)),
		},
		Bookings: DashboardBookings{
			Total:   s.count(s.db.Model(&models.Booking{})),
			Pending: s.count(s.db.Model(&models.Booking{}).Where("status = ?", models.BookingStatusPending)),
			Assigned: s.count(s.db.Model(&models.Booking{}).
				Where("status IN ? AND assigned_worker_id IS NOT NULL", activeStatuses)),
			Completed: s.count(s.db.Model(&models.Booking{}).Where("status = ?", models.BookingStatusCompleted)),
		},
		Revenue: StatAmount{
			Total: s.sum(s.db.Model(&models.Booking{}).
				Where("payment_status = ? AND total_amount IS NOT NULL", "paid"), "total_amount"),
		},
		Contact: DashboardContact{
			NewMessages: s.count(s.db.Model(&models.ContactMessage{}).Where("status = ?", models.ContactStatusNew)),
		},
		Applications: DashboardApps{
			Pending: s.count(s.db.Model(&models.WorkerApplication{}).Where("status = ?", models.ApplicationStatusPending)),
		},
	}
}

type Overview struct {
	Bookings OverviewBookings `json:"bookings"`
	Revenue  OverviewRevenue  `json:"revenue"`
	Workers  OverviewWorkers  `json:"workers"`
	Services OverviewServices `json:"services"`
}

type OverviewBookings struct {
	Total          int64   `json:"total"`
	Today          int64   `json:"today"`
	ThisWeek       int64   `json:"thisWeek"`
	Completed      int64   `json:"completed"`
	Cancelled      int64   `json:"cancelled"`
	CompletionRate float64 `json:"completionRate"`
}

type OverviewRevenue struct {
	Total                  float64 `json:"total"`
	AverageBookingValue    float64 `json:"averageBookingValue"`
	CompletedBookingsCount int64   `json:"completedBookingsCount"`
}

type OverviewWorkers struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type OverviewServices struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// Overview computes the high-level dashboard metrics.
func (s *AnalyticsService) Overview() *Overview {
	now := time.Now()
	startOfToday := utils.StartOfDay(now)
	startOfWeek := utils.StartOfWeek(now)

	completedRevenue := func() *gorm.DB {
		return s.db.Model(&models.Booking{}).
			Where("status = ? AND total_amount IS NOT NULL", models.BookingStatusCompleted)
	}

	total := s.count(s.db.Model(&models.Booking{}))
	completed := s.count(s.db.Model(&models.Booking{}).Where("status = ?", models.BookingStatusCompleted))
	completionRate := 0.0
	if total > 0 {
		completionRate = round1(float64(completed) / float64(total) * 100)
	}

	completedCount := s.count(completedRevenue())
	revenueTotal := s.sum(completedRevenue(), "total_amount")
	avgValue := 0.0
	if completedCount > 0 {
		avgValue = revenueTotal / float64(completedCount)
	}

	totalWorkers := s.count(s.db.Model(&models.Profile{}).Where("role = ?", models.RoleWorker))
	activeWorkers := s.count(s.db.Model(&models.Booking{}).
		Where("assigned_worker_id IS NOT NULL AND status IN ?", []models.BookingStatus{
			models.BookingStatusAssigned,
			models.BookingStatusAccepted,
			models.BookingStatusInProgress,
		}).
		Distinct("assigned_worker_id"))

	totalServices := s.count(s.db.Model(&models.Service{}))
	activeServices := s.count(s.db.Model(&models.Service{}).Where("is_active = ?", true))

	return &Overview{
		Bookings: OverviewBookings{
			Total:          total,
			Today:          s.count(s.db.Model(&models.Booking{}).Where("created_at >= ?", startOfToday)),
			ThisWeek:       s.count(s.db.Model(&models.Booking{}).Where("created_at >= ?", startOfWeek)),
			Completed:      completed,
			Cancelled:      s.count(s.db.Model(&models.Booking{}).Where("status = ?", models.BookingStatusCancelled)),
			CompletionRate: completionRate,
		},
		Revenue: OverviewRevenue{
			Total:                  revenueTotal,
			AverageBookingValue:    avgValue,
			CompletedBookingsCount: completedCount,
		},
		Workers: OverviewWorkers{
			Total:    totalWorkers,
			Active:   activeWorkers,
			Inactive: maxInt64(0, totalWorkers-activeWorkers),
		},
		Services: OverviewServices{
			Total:    totalServices,
			Active:   activeServices,
			Inactive: maxInt64(0, totalServices-activeServices),
		},
	}
}

type BookingsAnalytics struct {
	Summary         BookingsSummary `json:"summary"`
	StatusBreakdown []StatusCount   `json:"statusBreakdown"`
	Trend           BookingsTrend   `json:"trend"`
}

type BookingsSummary struct {
	Today     int64 `json:"today"`
	ThisWeek  int64 `json:"thisWeek"`
	ThisMonth int64 `json:"thisMonth"`
}

type StatusCount struct {
	Status models.BookingStatus `json:"status"`
	Count  int64                `json:"count"`
}

type BookingsTrend struct {
	Period string       `json:"period"`
	Data   []TrendPoint `json:"data"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Bookings computes the booking breakdown and the 7-day creation trend.
func (s *AnalyticsService) Bookings() *BookingsAnalytics {
	now := time.Now()
	startOfToday := utils.StartOfDay(now)
	startOfWeek := utils.StartOfWeek(now)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var breakdown []StatusCount
	err := s.db.Model(&models.Booking{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("count DESC").
		Scan(&breakdown).Error
	if err != nil {
		log.Printf("analytics: status breakdown failed: %v", err)
		breakdown = []StatusCount{}
	}

	sevenDaysAgo := startOfToday.AddDate(0, 0, -7)
	var recent []models.Booking
	if err := s.db.Select("created_at").
		Where("created_at >= ?", sevenDaysAgo).
		Order("created_at ASC").
		Find(&recent).Error; err != nil {
		log.Printf("analytics: trend query failed: %v", err)
	}

	byDay := map[string]int64{}
	var days []string
	for _, b := range recent {
		day := b.CreatedAt.Format("2006-01-02")
		if _, seen := byDay[day]; !seen {
			days = append(days, day)
		}
		byDay[day]++
	}
	trend := make([]TrendPoint, 0, len(days))
	for _, day := range days {
		trend = append(trend, TrendPoint{Date: day, Count: byDay[day]})
	}

	return &BookingsAnalytics{
		Summary: BookingsSummary{
			Today:     s.count(s.db.Model(&models.Booking{}).Where("created_at >= ?", startOfToday)),
			ThisWeek:  s.count(s.db.Model(&models.Booking{}).Where("created_at >= ?", startOfWeek)),
			ThisMonth: s.count(s.db.Model(&models.Booking{}).Where("created_at >= ?", startOfMonth)),
		},
		StatusBreakdown: breakdown,
		Trend:           BookingsTrend{Period: "7days", Data: trend},
	}
}

type RevenueAnalytics struct {
	Summary   RevenueSummary   `json:"summary"`
	Counts    RevenueCounts    `json:"counts"`
	ByService []ServiceRevenue `json:"byService"`
}

type RevenueSummary struct {
	Total               float64 `json:"total"`
	Today               float64 `json:"today"`
	ThisWeek            float64 `json:"thisWeek"`
	ThisMonth           float64 `json:"thisMonth"`
	AverageBookingValue float64 `json:"averageBookingValue"`
}

type RevenueCounts struct {
	TotalCompleted int64 `json:"totalCompleted"`
	TodayCompleted int64 `json:"todayCompleted"`
	WeekCompleted  int64 `json:"weekCompleted"`
	MonthCompleted int64 `json:"monthCompleted"`
}

type ServiceRevenue struct {
	ServiceID    *string `json:"serviceId"`
	ServiceName  string  `json:"serviceName"`
	Revenue      float64 `json:"revenue"`
	BookingCount int64   `json:"bookingCount"`
}

// Revenue computes revenue aggregates from completed bookings. Unlike
// the other dashboard reads this returns the error: a zeroed revenue
// figure is worse than a failed request.
func (s *AnalyticsService) Revenue() (*RevenueAnalytics, *types.AppError) {
	now := time.Now()
	startOfToday := utils.StartOfDay(now)
	startOfWeek := utils.StartOfWeek(now)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	completed := func() *gorm.DB {
		return s.db.Model(&models.Booking{}).
			Where("status = ? AND total_amount IS NOT NULL", models.BookingStatusCompleted)
	}

	type window struct {
		sum   float64
		count int64
	}
	aggregate := func(query *gorm.DB) (window, error) {
		var w window
		row := struct {
			Sum   *float64
			Count int64
		}{}
		if err := query.Select("SUM(total_amount) AS sum, COUNT(*) AS count").Scan(&row).Error; err != nil {
			return w, err
		}
		if row.Sum != nil {
			w.sum = *row.Sum
		}
		w.count = row.Count
		return w, nil
	}

	total, err := aggregate(completed())
	if err != nil {
		return nil, types.Internal("Failed to compute revenue", err)
	}
	today, err := aggregate(completed().Where("created_at >= ?", startOfToday))
	if err != nil {
		return nil, types.Internal("Failed to compute revenue", err)
	}
	week, err := aggregate(completed().Where("created_at >= ?", startOfWeek))
	if err != nil {
		return nil, types.Internal("Failed to compute revenue", err)
	}
	month, err := aggregate(completed().Where("created_at >= ?", startOfMonth))
	if err != nil {
		return nil, types.Internal("Failed to compute revenue", err)
	}

	avg := 0.0
	if total.count > 0 {
		avg = total.sum / float64(total.count)
	}

	var rows []struct {
		ServiceID   *string
		ServiceName string
		TotalAmount float64
	}
	err = completed().
		Select("service_id, service_name, total_amount").
		Limit(1000).
		Scan(&rows).Error
	if err != nil {
		return nil, types.Internal("Failed to compute revenue", err)
	}

	byKey := map[string]*ServiceRevenue{}
	var order []string
	for _, row := range rows {
		key := row.ServiceName
		if row.ServiceID != nil {
			key = *row.ServiceID
		}
		entry, ok := byKey[key]
		if !ok {
			entry = &ServiceRevenue{ServiceID: row.ServiceID, ServiceName: row.ServiceName}
			byKey[key] = entry
			order = append(order, key)
		}
		entry.Revenue += row.TotalAmount
		entry.BookingCount++
	}
	byService := make([]ServiceRevenue, 0, len(order))
	for _, key := range order {
		byService = append(byService, *byKey[key])
	}
	sort.Slice(byService, func(i, j int) bool {
		return byService[i].Revenue > byService[j].Revenue
	})

	return &RevenueAnalytics{
		Summary: RevenueSummary{
			Total:               total.sum,
			Today:               today.sum,
			ThisWeek:            week.sum,
			ThisMonth:           month.sum,
			AverageBookingValue: avg,
		},
		Counts: RevenueCounts{
			TotalCompleted: total.count,
			TodayCompleted: today.count,
			WeekCompleted:  week.count,
			MonthCompleted: month.count,
		},
		ByService: byService,
	}, nil
}

type WorkersAnalytics struct {
	Summary WorkersSummary `json:"summary"`
	Workers []WorkerStats  `json:"workers"`
}

type WorkersSummary struct {
	TotalWorkers          int     `json:"totalWorkers"`
	ActiveWorkers         int     `json:"activeWorkers"`
	InactiveWorkers       int     `json:"inactiveWorkers"`
	TotalCompletedJobs    int64   `json:"totalCompletedJobs"`
	TotalRevenue          float64 `json:"totalRevenue"`
	AverageCompletionRate float64 `json:"averageCompletionRate"`
}

type WorkerStats struct {
	WorkerID       string  `json:"workerId"`
	WorkerName     string  `json:"workerName"`
	Email          string  `json:"email"`
	TotalJobs      int64   `json:"totalJobs"`
	CompletedJobs  int64   `json:"completedJobs"`
	InProgressJobs int64   `json:"inProgressJobs"`
	AssignedJobs   int64   `json:"assignedJobs"`
	CompletionRate float64 `json:"completionRate"`
	Revenue        float64 `json:"revenue"`
	IsActive       bool    `json:"isActive"`
}

// Workers computes per-worker job counts and revenue.
func (s *AnalyticsService) Workers() *WorkersAnalytics {
	var workers []models.Profile
	if err := s.db.Where("role = ?", models.RoleWorker).Find(&workers).Error; err != nil {
		log.Printf("analytics: worker list failed: %v", err)
		return &WorkersAnalytics{Workers: []WorkerStats{}}
	}

	stats := make([]WorkerStats, 0, len(workers))
	for _, worker := range workers {
		assigned := func() *gorm.DB {
			return s.db.Model(&models.Booking{}).Where("assigned_worker_id = ?", worker.ID)
		}

		totalJobs := s.count(assigned())
		completedJobs := s.count(assigned().Where("status = ?", models.BookingStatusCompleted))

		rate := 0.0
		if totalJobs > 0 {
			rate = round1(float64(completedJobs) / float64(totalJobs) * 100)
		}

		name := worker.Email
		if worker.FullName != nil && *worker.FullName != "" {
			name = *worker.FullName
		}

		stats = append(stats, WorkerStats{
			WorkerID:       worker.ID,
			WorkerName:     name,
			Email:          worker.Email,
			TotalJobs:      totalJobs,
			CompletedJobs:  completedJobs,
			InProgressJobs: s.count(assigned().Where("status = ?", models.BookingStatusInProgress)),
			AssignedJobs:   s.count(assigned().Where("status = ?", models.BookingStatusAssigned)),
			CompletionRate: rate,
			Revenue: s.sum(assigned().
				Where("status = ? AND total_amount IS NOT NULL", models.BookingStatusCompleted), "total_amount"),
			IsActive: totalJobs > 0,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].TotalJobs > stats[j].TotalJobs
	})

	summary := WorkersSummary{TotalWorkers: len(workers)}
	rateSum := 0.0
	for _, w := range stats {
		if w.IsActive {
			summary.ActiveWorkers++
		}
		summary.TotalCompletedJobs += w.CompletedJobs
		summary.TotalRevenue += w.Revenue
		rateSum += w.CompletionRate
	}
	summary.InactiveWorkers = summary.TotalWorkers - summary.ActiveWorkers
	if len(stats) > 0 {
		summary.AverageCompletionRate = round1(rateSum / float64(len(stats)))
	}

	return &WorkersAnalytics{Summary: summary, Workers: stats}
}

type ServicesAnalytics struct {
	Summary     ServicesSummary `json:"summary"`
	MostBooked  *ServiceStats   `json:"mostBooked"`
	LeastBooked *ServiceStats   `json:"leastBooked"`
	Services    []ServiceStats  `json:"services"`
}

type ServicesSummary struct {
	TotalServices  int     `json:"totalServices"`
	ActiveServices int     `json:"activeServices"`
	TotalBookings  int64   `json:"totalBookings"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

type ServiceStats struct {
	ServiceID         string  `json:"serviceId"`
	ServiceName       string  `json:"serviceName"`
	Slug              string  `json:"slug"`
	IsActive          bool    `json:"isActive"`
	TotalBookings     int64   `json:"totalBookings"`
	CompletedBookings int64   `json:"completedBookings"`
	Revenue           float64 `json:"revenue"`
}

// Services computes per-service booking counts and revenue.
func (s *AnalyticsService) Services() *ServicesAnalytics {
	var services []models.Service
	if err := s.db.Find(&services).Error; err != nil {
		log.Printf("analytics: service list failed: %v", err)
		return &ServicesAnalytics{Services: []ServiceStats{}}
	}

	stats := make([]ServiceStats, 0, len(services))
	for _, service := range services {
		forService := func() *gorm.DB {
			return s.db.Model(&models.Booking{}).Where("service_id = ?", service.ID)
		}
		stats = append(stats, ServiceStats{
			ServiceID:         service.ID,
			ServiceName:       service.Name,
			Slug:              service.Slug,
			IsActive:          service.IsActive,
			TotalBookings:     s.count(forService()),
			CompletedBookings: s.count(forService().Where("status = ?", models.BookingStatusCompleted)),
			Revenue: s.sum(forService().
				Where("status = ? AND total_amount IS NOT NULL", models.BookingStatusCompleted), "total_amount"),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].TotalBookings > stats[j].TotalBookings
	})

	summary := ServicesSummary{TotalServices: len(services)}
	var mostBooked, leastBooked *ServiceStats
	for i := range stats {
		summary.TotalBookings += stats[i].TotalBookings
		summary.TotalRevenue += stats[i].Revenue
		if stats[i].IsActive {
			summary.ActiveServices++
			if mostBooked == nil {
				mostBooked = &stats[i]
			}
			leastBooked = &stats[i]
		}
	}

	return &ServicesAnalytics{
		Summary:     summary,
		MostBooked:  mostBooked,
		LeastBooked: leastBooked,
		Services:    stats,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
