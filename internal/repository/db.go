package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/langchou/homenergy/internal/models"
)

// DB 数据库连接池封装
type DB struct {
	Pool *pgxpool.Pool
}

// New 创建数据库连接
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	// 连接池配置
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// 测试连接
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close 关闭连接池
func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate 执行数据库迁移
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationCreateElectricityReadings,
		migrationCreateTemperatureReadings,
		migrationCreateTariffs,
		migrationCreateTariffRates,
		migrationCreateSaunaSessions,
		migrationCreateCollectorBaseline,
	}

	for _, m := range migrations {
		if _, err := db.Pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	return nil
}

// Stats 统计各表行数与时间范围
func (db *DB) Stats(ctx context.Context) (*models.DBStats, error) {
	stats := &models.DBStats{
		ElectricityBySource: make(map[string]int64),
	}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(interval_start), MAX(interval_start) FROM electricity_readings`,
	).Scan(&stats.ElectricityReadings.Count, &stats.ElectricityReadings.Earliest, &stats.ElectricityReadings.Latest)
	if err != nil {
		return nil, fmt.Errorf("electricity stats: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT source, COUNT(*) FROM electricity_readings GROUP BY source`,
	)
	if err != nil {
		return nil, fmt.Errorf("electricity source stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("scan source stats: %w", err)
		}
		stats.ElectricityBySource[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source stats rows: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(timestamp), MAX(timestamp) FROM temperature_readings`,
	).Scan(&stats.TemperatureReadings.Count, &stats.TemperatureReadings.Earliest, &stats.TemperatureReadings.Latest)
	if err != nil {
		return nil, fmt.Errorf("temperature stats: %w", err)
	}

	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM sauna_sessions`).Scan(&stats.SaunaSessions); err != nil {
		return nil, fmt.Errorf("session stats: %w", err)
	}
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tariffs`).Scan(&stats.Tariffs); err != nil {
		return nil, fmt.Errorf("tariff stats: %w", err)
	}

	return stats, nil
}

// 数据库迁移 SQL
const migrationCreateElectricityReadings = `
CREATE TABLE IF NOT EXISTS electricity_readings (
    id BIGSERIAL PRIMARY KEY,
    source VARCHAR(64) NOT NULL,
    interval_start TIMESTAMP NOT NULL,
    interval_end TIMESTAMP NOT NULL,
    consumption_kwh DOUBLE PRECISION NOT NULL,
    cost_pence DOUBLE PRECISION,
    UNIQUE(source, interval_start)
);
CREATE INDEX IF NOT EXISTS idx_elec_interval ON electricity_readings(interval_start);
CREATE INDEX IF NOT EXISTS idx_elec_source ON electricity_readings(source, interval_start);
`

const migrationCreateTemperatureReadings = `
CREATE TABLE IF NOT EXISTS temperature_readings (
    id BIGSERIAL PRIMARY KEY,
    sensor_id VARCHAR(64) NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    temperature_c DOUBLE PRECISION NOT NULL,
    UNIQUE(sensor_id, timestamp)
);
CREATE INDEX IF NOT EXISTS idx_temp_sensor ON temperature_readings(sensor_id, timestamp);
`

const migrationCreateTariffs = `
CREATE TABLE IF NOT EXISTS tariffs (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL UNIQUE,
    valid_from TIMESTAMP NOT NULL,
    valid_to TIMESTAMP
);
`

const migrationCreateTariffRates = `
CREATE TABLE IF NOT EXISTS tariff_rates (
    id BIGSERIAL PRIMARY KEY,
    tariff_id BIGINT NOT NULL REFERENCES tariffs(id) ON DELETE CASCADE,
    start_time VARCHAR(5) NOT NULL,
    end_time VARCHAR(5) NOT NULL,
    rate_pence_per_kwh DOUBLE PRECISION NOT NULL,
    days VARCHAR(16) NOT NULL DEFAULT '*'
);
CREATE INDEX IF NOT EXISTS idx_tariff_rates_tariff_id ON tariff_rates(tariff_id);
`

const migrationCreateSaunaSessions = `
CREATE TABLE IF NOT EXISTS sauna_sessions (
    id BIGSERIAL PRIMARY KEY,
    start_time TIMESTAMP NOT NULL UNIQUE,
    end_time TIMESTAMP NOT NULL,
    duration_minutes INT NOT NULL,
    peak_temperature_c DOUBLE PRECISION NOT NULL,
    estimated_kwh DOUBLE PRECISION,
    cheap_kwh DOUBLE PRECISION,
    peak_kwh DOUBLE PRECISION,
    heating_minutes INT,
    cost_pence DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS idx_sauna_start ON sauna_sessions(start_time);
`

const migrationCreateCollectorBaseline = `
CREATE TABLE IF NOT EXISTS collector_baseline (
    source VARCHAR(64) PRIMARY KEY,
    last_total_wh DOUBLE PRECISION NOT NULL,
    last_timestamp TIMESTAMP NOT NULL
);
`
