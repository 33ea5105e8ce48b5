package service

import (
	"context"
	"sync"
	"time"

	"meterbill-dashboard/internal/apiclient"
	"meterbill-dashboard/internal/domain"
	"meterbill-dashboard/internal/logger"
)

// Dashboard is the per-role aggregate derived from the list endpoints.
// Sources that failed to load leave their fields zeroed and are named in
// FailedSources; a partial dashboard is always preferred to no dashboard.
type Dashboard struct {
	Role          domain.Role
	TotalUsers    int
	TotalMeters   int
	TotalReadings int
	TodayReadings int
	Billing       *domain.BillingSummary
	FailedSources []string
}

type dashboardService struct {
	client  *apiclient.Client
	session Session
	// now is swappable for tests of the "today" derivation.
	now func() time.Time
}

// NewDashboardService creates the per-role dashboard aggregator.
func NewDashboardService(client *apiclient.Client, session Session) DashboardService {
	return &dashboardService{client: client, session: session, now: time.Now}
}

// source is one independently fetched contributor to the dashboard.
type source struct {
	name  string
	fetch func(ctx context.Context) error
}

// Load fans out the role's data sources concurrently and joins with
// all-settle semantics: every source runs to completion and a failure
// degrades only its own widget.
func (s *dashboardService) Load(ctx context.Context) (*Dashboard, error) {
	user := s.session.CurrentUser()
	if user == nil {
		return nil, ErrNotPermitted
	}

	dash := &Dashboard{Role: user.Role}
	var mu sync.Mutex

	var sources []source
	switch user.Role {
	case domain.RoleAdmin:
		sources = []source{
			{"meters", func(ctx context.Context) error {
				meters, err := s.client.ListMeters(ctx, "")
				if err != nil {
					return err
				}
				mu.Lock()
				dash.TotalMeters = len(meters)
				mu.Unlock()
				return nil
			}},
			{"users", func(ctx context.Context) error {
				users, err := s.client.ListUsers(ctx)
				if err != nil {
					return err
				}
				mu.Lock()
				dash.TotalUsers = len(users)
				mu.Unlock()
				return nil
			}},
			{"billing-summary", func(ctx context.Context) error {
				summary, err := s.client.GetBillingSummary(ctx)
				if err != nil {
					return err
				}
				mu.Lock()
				dash.Billing = summary
				mu.Unlock()
				return nil
			}},
			{"readings", func(ctx context.Context) error {
				list, err := s.client.ListReadings(ctx, "", 1, 20)
				if err != nil {
					return err
				}
				mu.Lock()
				dash.TotalReadings = list.Pagination.Total
				mu.Unlock()
				return nil
			}},
		}
	case domain.RoleLandlord:
		landlordID := user.ID
		sources = []source{
			{"meters", func(ctx context.Context) error {
				meters, err := s.client.ListMeters(ctx, landlordID)
				if err != nil {
					return err
				}
				mu.Lock()
				dash.TotalMeters = len(meters)
				mu.Unlock()
				return nil
			}},
			{"billing-summary", func(ctx context.Context) error {
				summary, err := s.client.GetBillingSummary(ctx)
				if err != nil {
					return err
				}
				mu.Lock()
				dash.Billing = summary
				mu.Unlock()
				return nil
			}},
		}
	case domain.RoleTechnician:
		phone := user.PhoneNumber
		today := s.now()
		sources = []source{
			{"readings", func(ctx context.Context) error {
				list, err := s.client.ListReadings(ctx, "", 1, 100)
				if err != nil {
					return err
				}
				mine, todayCount := 0, 0
				for i := range list.Readings {
					r := &list.Readings[i]
					if r.Technician.PhoneNumber != phone {
						continue
					}
					mine++
					if r.RecordedOn(today) {
						todayCount++
					}
				}
				mu.Lock()
				dash.TotalReadings = mine
				dash.TodayReadings = todayCount
				mu.Unlock()
				return nil
			}},
			{"meters", func(ctx context.Context) error {
				meters, err := s.client.ListMeters(ctx, "")
				if err != nil {
					return err
				}
				mu.Lock()
				dash.TotalMeters = len(meters)
				mu.Unlock()
				return nil
			}},
		}
	}

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src source) {
			defer wg.Done()
			if err := src.fetch(ctx); err != nil {
				logger.Warn("Dashboard source failed, widget zeroed", "source", src.name, "error", err)
				mu.Lock()
				dash.FailedSources = append(dash.FailedSources, src.name)
				mu.Unlock()
			}
		}(src)
	}
	wg.Wait()

	return dash, nil
}
