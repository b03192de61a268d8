package admin

import "context"

// StatsRepository aggregates counts across the whole schema.
type StatsRepository interface {
	SystemStats(ctx context.Context) (*SystemStats, error)
	WoundStats(ctx context.Context) (*WoundStats, error)
	ClinicStats(ctx context.Context) (*ClinicStats, error)
}
