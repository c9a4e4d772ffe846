package reelapi

import "context"

// Health report states.
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
)

// HealthAPI checks the remote service.
type HealthAPI struct {
	c Caller
}

// Check never fails: any error becomes an unhealthy report.
func (a *HealthAPI) Check(ctx context.Context) HealthReport {
	var out HealthStatus
	if err := a.c.Get(ctx, PathHealth, nil, &out); err != nil {
		return HealthReport{Status: HealthUnhealthy, Error: err.Error()}
	}
	return HealthReport{Status: HealthHealthy, Data: &out}
}

// Status returns the service's self-reported status.
func (a *HealthAPI) Status(ctx context.Context) (*ServiceStatus, error) {
	var out ServiceStatus
	if err := a.c.Get(ctx, PathStatus, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
