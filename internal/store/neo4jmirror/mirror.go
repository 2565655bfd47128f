// Package neo4jmirror maintains a secondary, queryable index of the
// artifact store's graph/layout topology in Neo4j (spec.md §4.1's
// "secondary index" component): the SQL store stays the system of
// record, this package only ever mirrors rows that are already
// committed there, and is entirely optional — every entry point is a
// no-op when no Neo4j connection is configured, the same "absent
// config disables the feature" contract the teacher's own
// internal/platform/neo4jdb uses.
package neo4jmirror

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/sync/errgroup"

	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// rebuildConcurrency bounds how many mirror writes run at once, mirroring
// the teacher's NEO4J_MAX_POOL_SIZE-style knob without needing one of
// its own: there is no per-call pool size here, just a fixed worker cap.
const rebuildConcurrency = 8

// Mirror wraps a Neo4j driver; the zero value is not usable, construct
// one with NewFromEnv.
type Mirror struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logger.Logger
}

// NewFromEnv builds a Mirror from MSC_NEO4J_URI/MSC_NEO4J_USER/
// MSC_NEO4J_PASSWORD/MSC_NEO4J_DATABASE, mirroring the teacher's
// neo4jdb.NewFromEnv contract exactly: an unset URI returns (nil, nil)
// rather than an error, since the mirror is optional infrastructure.
func NewFromEnv(log *logger.Logger) (*Mirror, error) {
	if log == nil {
		log = logger.NewNop()
	}
	uri := strings.TrimSpace(os.Getenv("MSC_NEO4J_URI"))
	if uri == "" {
		return nil, nil
	}
	user := strings.TrimSpace(os.Getenv("MSC_NEO4J_USER"))
	if user == "" {
		user = "neo4j"
	}
	password := os.Getenv("MSC_NEO4J_PASSWORD")
	database := strings.TrimSpace(os.Getenv("MSC_NEO4J_DATABASE"))

	timeoutSec := 10
	if v := strings.TrimSpace(os.Getenv("MSC_NEO4J_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""), func(cfg *neo4j.Config) {
		cfg.SocketConnectTimeout = time.Duration(timeoutSec) * time.Second
	})
	if err != nil {
		return nil, xerrors.WrapRecoverable(err, "neo4jmirror: initializing driver")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, xerrors.WrapRecoverable(err, "neo4jmirror: verifying connectivity")
	}

	return &Mirror{driver: driver, database: database, log: log.With("component", "neo4jmirror")}, nil
}

// Close releases the underlying driver. Safe to call on a nil Mirror.
func (m *Mirror) Close(ctx context.Context) error {
	if m == nil || m.driver == nil {
		return nil
	}
	return m.driver.Close(ctx)
}

func (m *Mirror) session(ctx context.Context) neo4j.SessionWithContext {
	return m.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: m.database,
	})
}

// UpsertGraph mirrors one Graph row as a (:Graph) node.
func (m *Mirror) UpsertGraph(ctx context.Context, g store.Graph) error {
	if m == nil || m.driver == nil {
		return nil
	}
	session := m.session(ctx)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (g:Graph {id: $id})
SET g.generator = $generator, g.nodes = $nodes, g.edges = $edges, g.native = $native
`, map[string]any{
			"id":        g.ID.String(),
			"generator": g.Generator.String(),
			"nodes":     int64(g.Nodes),
			"edges":     int64(g.Edges),
			"native":    g.Native,
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return xerrors.WrapRecoverable(err, "neo4jmirror: upserting graph %s", g.ID)
	}
	return nil
}

// UpsertLayout mirrors one Layout row as a (:Layout)-[:OF]->(:Graph) edge.
func (m *Mirror) UpsertLayout(ctx context.Context, l store.Layout) error {
	if m == nil || m.driver == nil {
		return nil
	}
	kind := ""
	if l.Layout != nil {
		kind = l.Layout.String()
	}
	session := m.session(ctx)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (g:Graph {id: $graph_id})
MERGE (l:Layout {id: $id})
SET l.kind = $kind, l.proper = $proper
MERGE (l)-[:OF]->(g)
`, map[string]any{
			"graph_id": l.GraphID.String(),
			"id":       l.ID.String(),
			"kind":     kind,
			"proper":   l.IsProper(),
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return xerrors.WrapRecoverable(err, "neo4jmirror: upserting layout %s", l.ID)
	}
	return nil
}

// UpsertInterLayout mirrors one InterLayout row as a (:Layout)
// -[:DERIVED_FROM {method, rate, role: "1st"|"2nd"}]->(:Layout) pair of
// edges to its two parents.
func (m *Mirror) UpsertInterLayout(ctx context.Context, il store.InterLayout) error {
	if m == nil || m.driver == nil {
		return nil
	}
	session := m.session(ctx)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (child:Layout {id: $id}), (p1:Layout {id: $parent1}), (p2:Layout {id: $parent2})
MERGE (child)-[e1:DERIVED_FROM {role: "1st"}]->(p1)
SET e1.method = $method, e1.rate = $rate
MERGE (child)-[e2:DERIVED_FROM {role: "2nd"}]->(p2)
SET e2.method = $method, e2.rate = $rate
`, map[string]any{
			"id":      il.ID.String(),
			"parent1": il.Parent1st.String(),
			"parent2": il.Parent2nd.String(),
			"method":  il.Method.String(),
			"rate":    il.Rate,
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return xerrors.WrapRecoverable(err, "neo4jmirror: upserting inter-layout %s", il.ID)
	}
	return nil
}

// UpsertWorseLayout mirrors one WorseLayout row as a single
// (:Layout)-[:DERIVED_FROM]->(:Layout) edge to its parent.
func (m *Mirror) UpsertWorseLayout(ctx context.Context, wl store.WorseLayout) error {
	if m == nil || m.driver == nil {
		return nil
	}
	session := m.session(ctx)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (child:Layout {id: $id}), (parent:Layout {id: $parent})
MERGE (child)-[e:DERIVED_FROM {role: "worse"}]->(parent)
SET e.method = $method, e.rate = $rate
`, map[string]any{
			"id":     wl.ID.String(),
			"parent": wl.Parent.String(),
			"method": wl.Method.String(),
			"rate":   wl.Rate,
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return xerrors.WrapRecoverable(err, "neo4jmirror: upserting worse-layout %s", wl.ID)
	}
	return nil
}

// Rebuild mirrors every Graph, Layout, InterLayout, and WorseLayout row
// currently in st. Each phase runs to completion before the next
// starts, since every MERGE in a later phase assumes the nodes an
// earlier phase creates already exist (graphs before layouts, layouts
// before the derivation edges that reference them by id); within a
// phase, writes run concurrently up to rebuildConcurrency via an
// errgroup, matching the teacher's own bounded-fan-out style for bulk
// upserts.
func (m *Mirror) Rebuild(ctx context.Context, st *store.Store) error {
	if m == nil || m.driver == nil {
		return nil
	}
	graphs, err := store.Select[store.Graph](ctx, st.DB(), nil)
	if err != nil {
		return err
	}
	if err := runBounded(ctx, graphs, m.UpsertGraph); err != nil {
		return err
	}
	m.log.Info("mirrored graphs to neo4j", "count", len(graphs))

	layouts, err := store.Select[store.Layout](ctx, st.DB(), nil)
	if err != nil {
		return err
	}
	if err := runBounded(ctx, layouts, m.UpsertLayout); err != nil {
		return err
	}
	m.log.Info("mirrored layouts to neo4j", "count", len(layouts))

	inters, err := store.Select[store.InterLayout](ctx, st.DB(), nil)
	if err != nil {
		return err
	}
	if err := runBounded(ctx, inters, m.UpsertInterLayout); err != nil {
		return err
	}
	m.log.Info("mirrored inter-layout derivations to neo4j", "count", len(inters))

	worses, err := store.Select[store.WorseLayout](ctx, st.DB(), nil)
	if err != nil {
		return err
	}
	if err := runBounded(ctx, worses, m.UpsertWorseLayout); err != nil {
		return err
	}
	m.log.Info("mirrored worse-layout derivations to neo4j", "count", len(worses))
	return nil
}

// runBounded upserts every row of rows via upsert, at most
// rebuildConcurrency at a time, stopping at the first error.
func runBounded[T any](ctx context.Context, rows []T, upsert func(context.Context, T) error) error {
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(rebuildConcurrency)
	for _, row := range rows {
		row := row
		grp.Go(func() error { return upsert(gctx, row) })
	}
	return grp.Wait()
}
