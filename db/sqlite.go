// Package db records training runs and console predictions in SQLite.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL UNIQUE,
        pair_id TEXT NOT NULL,
        model_name VARCHAR(50),
        accuracy REAL,
        macro_f1 REAL,
        macro_roc_auc REAL,
        stratified INTEGER,
        train_size INTEGER,
        test_size INTEGER,
        data_points INTEGER,
        trained_at DATETIME
    );
    CREATE TABLE IF NOT EXISTS prediction_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        pair_id TEXT NOT NULL,
        predicted_label TEXT NOT NULL,
        confidence REAL,
        features TEXT,
        predicted_at DATETIME
    );
    CREATE INDEX IF NOT EXISTS idx_training_log_trained_at ON training_log(trained_at);
    `

type DB struct {
	conn *sql.DB
}

// Open creates the database file and its parent directory if needed.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create tables failed: %w", err)
	}
	return &DB{conn: conn}, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

type TrainingLog struct {
	RunID       string    `json:"run_id"`
	PairID      string    `json:"pair_id"`
	ModelName   string    `json:"model_name"`
	Accuracy    float64   `json:"accuracy"`
	MacroF1     float64   `json:"macro_f1"`
	MacroROCAUC *float64  `json:"macro_roc_auc,omitempty"`
	Stratified  bool      `json:"stratified"`
	TrainSize   int       `json:"train_size"`
	TestSize    int       `json:"test_size"`
	DataPoints  int       `json:"data_points"`
	TrainedAt   time.Time `json:"trained_at"`
}

func (d *DB) SaveTrainingLog(log TrainingLog) error {
	var auc sql.NullFloat64
	if log.MacroROCAUC != nil {
		auc = sql.NullFloat64{Float64: *log.MacroROCAUC, Valid: true}
	}
	_, err := d.conn.Exec(`
        INSERT INTO training_log (
            run_id, pair_id, model_name, accuracy, macro_f1, macro_roc_auc,
            stratified, train_size, test_size, data_points, trained_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.RunID, log.PairID, log.ModelName, log.Accuracy, log.MacroF1, auc,
		log.Stratified, log.TrainSize, log.TestSize, log.DataPoints, log.TrainedAt.UTC())
	return err
}

// LoadTrainingLog returns the most recent runs first. limit <= 0 returns all.
func (d *DB) LoadTrainingLog(limit int) ([]TrainingLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.conn.Query(`
        SELECT run_id, pair_id, model_name, accuracy, macro_f1, macro_roc_auc,
               stratified, train_size, test_size, data_points, trained_at
        FROM training_log
        ORDER BY trained_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		var auc sql.NullFloat64
		if err := rows.Scan(&log.RunID, &log.PairID, &log.ModelName, &log.Accuracy, &log.MacroF1, &auc,
			&log.Stratified, &log.TrainSize, &log.TestSize, &log.DataPoints, &log.TrainedAt); err != nil {
			return nil, err
		}
		if auc.Valid {
			value := auc.Float64
			log.MacroROCAUC = &value
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

type PredictionLog struct {
	PairID         string    `json:"pair_id"`
	PredictedLabel string    `json:"predicted_label"`
	Confidence     float64   `json:"confidence"`
	Features       string    `json:"features"`
	PredictedAt    time.Time `json:"predicted_at"`
}

func (d *DB) SavePrediction(p PredictionLog) error {
	_, err := d.conn.Exec(`
        INSERT INTO prediction_log (pair_id, predicted_label, confidence, features, predicted_at)
        VALUES (?, ?, ?, ?, ?)`,
		p.PairID, p.PredictedLabel, p.Confidence, p.Features, p.PredictedAt.UTC())
	return err
}

// LoadPredictions returns the most recent predictions first.
func (d *DB) LoadPredictions(limit int) ([]PredictionLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.conn.Query(`
        SELECT pair_id, predicted_label, confidence, features, predicted_at
        FROM prediction_log
        ORDER BY predicted_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]PredictionLog, 0)
	for rows.Next() {
		var p PredictionLog
		if err := rows.Scan(&p.PairID, &p.PredictedLabel, &p.Confidence, &p.Features, &p.PredictedAt); err != nil {
			return nil, err
		}
		logs = append(logs, p)
	}
	return logs, rows.Err()
}
