package forecast

import (
	"HabitusForecast/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ForecastService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewForecastService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &ForecastService{config: cfg, pool: pool}
}

func (s *ForecastService) Name() string {
	return "forecast"
}

func (s *ForecastService) Start() error {
	go StartForecastService(s.pool, s.config)
	return nil
}

func (s *ForecastService) Stop() error {
	return nil
}
