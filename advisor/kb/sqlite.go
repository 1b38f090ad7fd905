package kb

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the pure-Go sqlite driver

	"github.com/collective-hls/collective-hls/advisor"
)

// Single-file KB distribution. The schema mirrors the YAML+CSV layout:
// fitted artifacts row-per-element, frontier points row-per-candidate with a
// side table for their directive maps.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kb_meta (
	version       TEXT    NOT NULL,
	feature_dim   INTEGER NOT NULL,
	component_dim INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS projection (
	row_idx INTEGER NOT NULL,
	col_idx INTEGER NOT NULL,
	value   REAL    NOT NULL
);
CREATE TABLE IF NOT EXISTS centering (
	idx   INTEGER NOT NULL,
	value REAL    NOT NULL
);
CREATE TABLE IF NOT EXISTS clusters (
	id     INTEGER PRIMARY KEY,
	kind   TEXT    NOT NULL,
	radius REAL    NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS cluster_vectors (
	cluster INTEGER NOT NULL,
	role    TEXT    NOT NULL,
	idx     INTEGER NOT NULL,
	value   REAL    NOT NULL
);
CREATE TABLE IF NOT EXISTS applications (
	name    TEXT    PRIMARY KEY,
	cluster INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS app_features (
	app   TEXT    NOT NULL,
	idx   INTEGER NOT NULL,
	value REAL    NOT NULL
);
CREATE TABLE IF NOT EXISTS pareto_points (
	app        TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	cluster    INTEGER NOT NULL,
	latency_ms REAL    NOT NULL,
	bram_pct   REAL    NOT NULL,
	dsp_pct    REAL    NOT NULL,
	ff_pct     REAL    NOT NULL,
	lut_pct    REAL    NOT NULL
);
CREATE TABLE IF NOT EXISTS pareto_directives (
	app          TEXT NOT NULL,
	key          TEXT NOT NULL,
	action_point TEXT NOT NULL,
	directive    TEXT NOT NULL
);
`

// OpenSQLite loads a snapshot from a single-file SQLite knowledge base.
func OpenSQLite(ctx context.Context, path string) (*Snapshot, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening KB database: %w", err)
	}
	defer func() { _ = db.Close() }()
	return loadSQLite(ctx, db)
}

func loadSQLite(ctx context.Context, db *sqlx.DB) (*Snapshot, error) {
	var meta struct {
		Version      string `db:"version"`
		FeatureDim   int    `db:"feature_dim"`
		ComponentDim int    `db:"component_dim"`
	}
	if err := db.GetContext(ctx, &meta, `SELECT version, feature_dim, component_dim FROM kb_meta`); err != nil {
		return nil, fmt.Errorf("reading KB metadata: %w", err)
	}

	manifest := &Manifest{
		Version:    meta.Version,
		Features:   meta.FeatureDim,
		Components: meta.ComponentDim,
		Centering:  make([]float64, meta.FeatureDim),
		Projection: make([][]float64, meta.FeatureDim),
	}
	for i := range manifest.Projection {
		manifest.Projection[i] = make([]float64, meta.ComponentDim)
	}

	var cells []struct {
		Row   int     `db:"row_idx"`
		Col   int     `db:"col_idx"`
		Value float64 `db:"value"`
	}
	if err := db.SelectContext(ctx, &cells, `SELECT row_idx, col_idx, value FROM projection`); err != nil {
		return nil, fmt.Errorf("reading projection: %w", err)
	}
	for _, c := range cells {
		if c.Row < 0 || c.Row >= meta.FeatureDim || c.Col < 0 || c.Col >= meta.ComponentDim {
			return nil, fmt.Errorf("projection cell (%d,%d) out of range", c.Row, c.Col)
		}
		manifest.Projection[c.Row][c.Col] = c.Value
	}

	var centering []struct {
		Idx   int     `db:"idx"`
		Value float64 `db:"value"`
	}
	if err := db.SelectContext(ctx, &centering, `SELECT idx, value FROM centering`); err != nil {
		return nil, fmt.Errorf("reading centering: %w", err)
	}
	for _, c := range centering {
		if c.Idx < 0 || c.Idx >= meta.FeatureDim {
			return nil, fmt.Errorf("centering index %d out of range", c.Idx)
		}
		manifest.Centering[c.Idx] = c.Value
	}

	if err := loadSQLiteClusters(ctx, db, manifest); err != nil {
		return nil, err
	}
	if err := loadSQLiteApplications(ctx, db, manifest); err != nil {
		return nil, err
	}

	projection, models, apps, err := manifest.build()
	if err != nil {
		return nil, err
	}

	entries, err := loadSQLiteFrontiers(ctx, db)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(manifest.Version, projection, models, apps, entries), nil
}

func loadSQLiteClusters(ctx context.Context, db *sqlx.DB, manifest *Manifest) error {
	var clusters []struct {
		ID     int     `db:"id"`
		Kind   string  `db:"kind"`
		Radius float64 `db:"radius"`
	}
	if err := db.SelectContext(ctx, &clusters, `SELECT id, kind, radius FROM clusters ORDER BY id`); err != nil {
		return fmt.Errorf("reading clusters: %w", err)
	}

	var vectors []struct {
		Cluster int     `db:"cluster"`
		Role    string  `db:"role"`
		Idx     int     `db:"idx"`
		Value   float64 `db:"value"`
	}
	if err := db.SelectContext(ctx, &vectors, `SELECT cluster, role, idx, value FROM cluster_vectors ORDER BY cluster, role, idx`); err != nil {
		return fmt.Errorf("reading cluster vectors: %w", err)
	}
	byClusterRole := make(map[int]map[string][]float64)
	for _, v := range vectors {
		if byClusterRole[v.Cluster] == nil {
			byClusterRole[v.Cluster] = make(map[string][]float64)
		}
		byClusterRole[v.Cluster][v.Role] = append(byClusterRole[v.Cluster][v.Role], v.Value)
	}

	for _, c := range clusters {
		roles := byClusterRole[c.ID]
		manifest.Clusters = append(manifest.Clusters, ClusterSpec{
			ID:         c.ID,
			Kind:       c.Kind,
			Mean:       roles["mean"],
			Covariance: roles["covariance"],
			Centroid:   roles["centroid"],
			Radius:     c.Radius,
		})
	}
	return nil
}

func loadSQLiteApplications(ctx context.Context, db *sqlx.DB, manifest *Manifest) error {
	var apps []struct {
		Name    string `db:"name"`
		Cluster int    `db:"cluster"`
	}
	if err := db.SelectContext(ctx, &apps, `SELECT name, cluster FROM applications ORDER BY name`); err != nil {
		return fmt.Errorf("reading applications: %w", err)
	}

	var features []struct {
		App   string  `db:"app"`
		Idx   int     `db:"idx"`
		Value float64 `db:"value"`
	}
	if err := db.SelectContext(ctx, &features, `SELECT app, idx, value FROM app_features ORDER BY app, idx`); err != nil {
		return fmt.Errorf("reading application features: %w", err)
	}
	byApp := make(map[string][]float64)
	for _, f := range features {
		byApp[f.App] = append(byApp[f.App], f.Value)
	}

	for _, a := range apps {
		manifest.Apps = append(manifest.Apps, AppSpec{Name: a.Name, Cluster: a.Cluster, Features: byApp[a.Name]})
	}
	return nil
}

func loadSQLiteFrontiers(ctx context.Context, db *sqlx.DB) ([]FrontierEntry, error) {
	var points []struct {
		App       string  `db:"app"`
		Key       string  `db:"key"`
		Cluster   int     `db:"cluster"`
		LatencyMs float64 `db:"latency_ms"`
		BRAMPct   float64 `db:"bram_pct"`
		DSPPct    float64 `db:"dsp_pct"`
		FFPct     float64 `db:"ff_pct"`
		LUTPct    float64 `db:"lut_pct"`
	}
	if err := db.SelectContext(ctx, &points, `SELECT app, key, cluster, latency_ms, bram_pct, dsp_pct, ff_pct, lut_pct FROM pareto_points ORDER BY app, key`); err != nil {
		return nil, fmt.Errorf("reading pareto points: %w", err)
	}

	var directives []struct {
		App         string `db:"app"`
		Key         string `db:"key"`
		ActionPoint string `db:"action_point"`
		Directive   string `db:"directive"`
	}
	if err := db.SelectContext(ctx, &directives, `SELECT app, key, action_point, directive FROM pareto_directives`); err != nil {
		return nil, fmt.Errorf("reading pareto directives: %w", err)
	}
	byKey := make(map[string]map[string]string)
	for _, d := range directives {
		if byKey[d.Key] == nil {
			byKey[d.Key] = make(map[string]string)
		}
		byKey[d.Key][d.ActionPoint] = d.Directive
	}

	entries := make([]FrontierEntry, 0, len(points))
	for _, p := range points {
		dirs := byKey[p.Key]
		if dirs == nil {
			dirs = make(map[string]string)
		}
		entries = append(entries, FrontierEntry{
			App: p.App,
			Candidate: advisor.Candidate{
				Combination: advisor.DirectiveCombination{Key: p.Key, Cluster: p.Cluster, Directives: dirs},
				RecordedQoR: advisor.QoRRecord{
					LatencyMs: p.LatencyMs,
					BRAMPct:   p.BRAMPct,
					DSPPct:    p.DSPPct,
					FFPct:     p.FFPct,
					LUTPct:    p.LUTPct,
				},
			},
		})
	}
	return entries, nil
}

// SaveSQLite writes a manifest and its frontier entries into a single-file
// SQLite knowledge base, creating the schema as needed. Existing contents are
// replaced inside one transaction.
func SaveSQLite(ctx context.Context, path string, manifest *Manifest, entries []FrontierEntry) error {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return fmt.Errorf("opening KB database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating KB schema: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting KB transaction: %w", err)
	}
	if err := saveSQLiteTx(ctx, tx, manifest, entries); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing KB transaction: %w", err)
	}
	return nil
}

func saveSQLiteTx(ctx context.Context, tx *sqlx.Tx, manifest *Manifest, entries []FrontierEntry) error {
	for _, table := range []string{"kb_meta", "projection", "centering", "clusters", "cluster_vectors", "applications", "app_features", "pareto_points", "pareto_directives"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO kb_meta (version, feature_dim, component_dim) VALUES (?, ?, ?)`,
		manifest.Version, manifest.Features, manifest.Components); err != nil {
		return fmt.Errorf("writing KB metadata: %w", err)
	}
	for i, row := range manifest.Projection {
		for j, v := range row {
			if _, err := tx.ExecContext(ctx, `INSERT INTO projection (row_idx, col_idx, value) VALUES (?, ?, ?)`, i, j, v); err != nil {
				return fmt.Errorf("writing projection: %w", err)
			}
		}
	}
	for i, v := range manifest.Centering {
		if _, err := tx.ExecContext(ctx, `INSERT INTO centering (idx, value) VALUES (?, ?)`, i, v); err != nil {
			return fmt.Errorf("writing centering: %w", err)
		}
	}
	for _, c := range manifest.Clusters {
		if _, err := tx.ExecContext(ctx, `INSERT INTO clusters (id, kind, radius) VALUES (?, ?, ?)`, c.ID, c.Kind, c.Radius); err != nil {
			return fmt.Errorf("writing cluster %d: %w", c.ID, err)
		}
		for role, vec := range map[string][]float64{"mean": c.Mean, "covariance": c.Covariance, "centroid": c.Centroid} {
			for i, v := range vec {
				if _, err := tx.ExecContext(ctx, `INSERT INTO cluster_vectors (cluster, role, idx, value) VALUES (?, ?, ?, ?)`, c.ID, role, i, v); err != nil {
					return fmt.Errorf("writing cluster %d %s: %w", c.ID, role, err)
				}
			}
		}
	}
	for _, a := range manifest.Apps {
		if _, err := tx.ExecContext(ctx, `INSERT INTO applications (name, cluster) VALUES (?, ?)`, a.Name, a.Cluster); err != nil {
			return fmt.Errorf("writing application %s: %w", a.Name, err)
		}
		for i, v := range a.Features {
			if _, err := tx.ExecContext(ctx, `INSERT INTO app_features (app, idx, value) VALUES (?, ?, ?)`, a.Name, i, v); err != nil {
				return fmt.Errorf("writing features of %s: %w", a.Name, err)
			}
		}
	}
	for _, e := range entries {
		q := e.Candidate.RecordedQoR
		if _, err := tx.ExecContext(ctx, `INSERT INTO pareto_points (app, key, cluster, latency_ms, bram_pct, dsp_pct, ff_pct, lut_pct) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.App, e.Candidate.Combination.Key, e.Candidate.Combination.Cluster, q.LatencyMs, q.BRAMPct, q.DSPPct, q.FFPct, q.LUTPct); err != nil {
			return fmt.Errorf("writing pareto point %s: %w", e.Candidate.Combination.Key, err)
		}
		points := make([]string, 0, len(e.Candidate.Combination.Directives))
		for ap := range e.Candidate.Combination.Directives {
			points = append(points, ap)
		}
		sort.Strings(points)
		for _, ap := range points {
			if _, err := tx.ExecContext(ctx, `INSERT INTO pareto_directives (app, key, action_point, directive) VALUES (?, ?, ?, ?)`,
				e.App, e.Candidate.Combination.Key, ap, e.Candidate.Combination.Directives[ap]); err != nil {
				return fmt.Errorf("writing directives of %s: %w", e.Candidate.Combination.Key, err)
			}
		}
	}
	return nil
}
