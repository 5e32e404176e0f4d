// Package dispatch routes tool invocations through a fixed pipeline:
// validate the arguments, gate on the shared rate limiter, call the
// Spool API, and normalize the result. Every invocation completes with
// an envelope; no failure escapes the Invoke boundary.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/spoolhq/spool-mcp/internal/models"
	"github.com/spoolhq/spool-mcp/internal/ratelimit"
	"github.com/spoolhq/spool-mcp/internal/spool"
	"github.com/spoolhq/spool-mcp/internal/tools"
)

// CollectionAPI is the slice of the Spool client the dispatcher needs.
// *spool.Client satisfies it; tests substitute a fake.
type CollectionAPI interface {
	ListCollections(ctx context.Context) ([]spool.Collection, error)
	CreateCollection(ctx context.Context, name string) (*spool.Collection, error)
	GetCollection(ctx context.Context, id string) (*spool.Collection, error)
	CollectionStats(ctx context.Context, id string) (map[string]interface{}, error)
	ListFiles(ctx context.Context, id string) ([]spool.File, error)
	AddFiles(ctx context.Context, id string, files []spool.FileToAdd) ([]spool.File, error)
	Search(ctx context.Context, id, text string) ([]spool.Match, error)
}

type handlerFunc func(ctx context.Context, args map[string]interface{}) models.Envelope

// Dispatcher is the single entry point for tool invocations, shared by
// the MCP server, the REST surface, and the agent loop.
type Dispatcher struct {
	api      CollectionAPI
	limiter  *ratelimit.Limiter
	handlers map[string]handlerFunc
}

// New builds the routing table and verifies it covers the catalog
// exactly. A mismatch between the two is a programming error, so it
// panics at startup rather than surfacing per request.
func New(api CollectionAPI, limiter *ratelimit.Limiter) *Dispatcher {
	d := &Dispatcher{api: api, limiter: limiter}
	d.handlers = map[string]handlerFunc{
		tools.NameListCollections:      d.listCollections,
		tools.NameCreateCollection:     d.createCollection,
		tools.NameGetCollectionDetails: d.getCollectionDetails,
		tools.NameGetCollectionStats:   d.getCollectionStats,
		tools.NameListCollectionFiles:  d.listCollectionFiles,
		tools.NameAddFile:              d.addFile,
		tools.NameSearch:               d.search,
	}

	names := tools.Names()
	if len(names) != len(d.handlers) {
		panic(fmt.Sprintf("dispatch: %d handlers for %d catalog tools", len(d.handlers), len(names)))
	}
	for _, name := range names {
		if _, ok := d.handlers[name]; !ok {
			panic(fmt.Sprintf("dispatch: no handler for catalog tool %q", name))
		}
	}
	return d
}

// Invoke runs one tool invocation to completion. It never panics and
// never returns a Go error: every outcome, including an unknown tool
// name or a handler panic, is reported through the envelope.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]interface{}) (env models.Envelope) {
	start := time.Now()
	id := uuid.NewString()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("tool", name).
				Str("invocation_id", id).
				Interface("panic", rec).
				Msg("panic during tool invocation")
			env = models.Failf(models.KindUnexpected, "internal error executing %s", name)
		}
		logInvocation(name, id, env, time.Since(start))
	}()

	h, ok := d.handlers[name]
	if !ok {
		return models.Failf(models.KindValidation, "unknown tool: %s", name)
	}
	return h(ctx, args)
}

func logInvocation(name, id string, env models.Envelope, elapsed time.Duration) {
	if env.OK() {
		log.Info().
			Str("tool", name).
			Str("invocation_id", id).
			Dur("duration", elapsed).
			Msg("tool invocation")
		return
	}
	log.Warn().
		Str("tool", name).
		Str("invocation_id", id).
		Str("kind", string(env.Failure.Kind)).
		Str("error", env.Failure.Message).
		Dur("duration", elapsed).
		Msg("tool invocation failed")
}
