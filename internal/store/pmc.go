package store

import (
	"context"
	"fmt"
	"time"

	"trainload/internal/pmc"
	"trainload/internal/scalar"
)

// SavePMCSeries persists points for athleteID, replacing any existing rows
// on the same dates.
func (d *DB) SavePMCSeries(ctx context.Context, athleteID string, points []pmc.Point) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pmc_point (athlete_id, date, ctl, atl, tsb)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(athlete_id, date) DO UPDATE SET ctl=excluded.ctl, atl=excluded.atl, tsb=excluded.tsb`)
	if err != nil {
		return fmt.Errorf("store: prepare pmc insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, athleteID, p.Date.Format("2006-01-02"), p.CTL.String(), p.ATL.String(), p.TSB.String()); err != nil {
			return fmt.Errorf("store: insert pmc point for %s: %w", p.Date, err)
		}
	}
	return tx.Commit()
}

// LoadPMCSeries returns the persisted series for athleteID in chronological
// order.
func (d *DB) LoadPMCSeries(ctx context.Context, athleteID string) ([]pmc.Point, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT date, ctl, atl, tsb FROM pmc_point WHERE athlete_id = ? ORDER BY date ASC`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("store: query pmc series: %w", err)
	}
	defer rows.Close()

	var out []pmc.Point
	for rows.Next() {
		var dateStr, ctlStr, atlStr, tsbStr string
		if err := rows.Scan(&dateStr, &ctlStr, &atlStr, &tsbStr); err != nil {
			return nil, fmt.Errorf("store: scan pmc row: %w", err)
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("store: parse pmc date %q: %w", dateStr, err)
		}
		ctl, err := scalar.New(ctlStr)
		if err != nil {
			return nil, err
		}
		atl, err := scalar.New(atlStr)
		if err != nil {
			return nil, err
		}
		tsb, err := scalar.New(tsbStr)
		if err != nil {
			return nil, err
		}
		out = append(out, pmc.Point{Date: date, CTL: ctl, ATL: atl, TSB: tsb})
	}
	return out, rows.Err()
}

// EnsureAthlete inserts athleteID into athlete_profile if it is not already
// present.
func (d *DB) EnsureAthlete(ctx context.Context, athleteID string) error {
	_, err := d.db.ExecContext(ctx, `INSERT INTO athlete_profile (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, athleteID)
	return err
}

// SaveThreshold records one (metric, effective_from, value) entry for an
// athlete's threshold history.
func (d *DB) SaveThreshold(ctx context.Context, athleteID, metric string, effectiveFrom time.Time, value scalar.D) error {
	_, err := d.db.ExecContext(ctx, `INSERT INTO threshold_history (athlete_id, metric, effective_from, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(athlete_id, metric, effective_from) DO UPDATE SET value=excluded.value`,
		athleteID, metric, effectiveFrom.Format("2006-01-02"), value.String())
	return err
}
