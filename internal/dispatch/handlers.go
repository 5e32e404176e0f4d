package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/spoolhq/spool-mcp/internal/models"
	"github.com/spoolhq/spool-mcp/internal/spool"
)

// Handlers follow one pipeline: validate, gate, call, normalize. The
// rate limiter is consulted only after validation succeeds, so rejected
// invocations never consume window capacity.

func (d *Dispatcher) listCollections(ctx context.Context, _ map[string]interface{}) models.Envelope {
	if err := d.limiter.Wait(ctx); err != nil {
		return models.Fail(models.KindUnexpected, err.Error())
	}
	cols, err := d.api.ListCollections(ctx)
	if err != nil {
		return remoteFailure(err)
	}
	normalized := make([]map[string]interface{}, 0, len(cols))
	for _, c := range cols {
		normalized = append(normalized, normalizeCollection(c))
	}
	return models.Success(map[string]interface{}{"collections": normalized})
}

func (d *Dispatcher) createCollection(ctx context.Context, raw map[string]interface{}) models.Envelope {
	args, err := parseCreateCollectionArgs(raw)
	if err != nil {
		return models.Fail(models.KindValidation, err.Error())
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return models.Fail(models.KindUnexpected, err.Error())
	}
	col, err := d.api.CreateCollection(ctx, args.Name)
	if err != nil {
		return remoteFailure(err)
	}
	if col == nil || col.ID == "" {
		return models.Fail(models.KindUnexpected, "create returned no collection id")
	}
	return models.Success(map[string]interface{}{"collection_id": col.ID})
}

func (d *Dispatcher) getCollectionDetails(ctx context.Context, raw map[string]interface{}) models.Envelope {
	args, err := parseCollectionIDArgs(raw)
	if err != nil {
		return models.Fail(models.KindValidation, err.Error())
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return models.Fail(models.KindUnexpected, err.Error())
	}
	col, err := d.api.GetCollection(ctx, args.CollectionID)
	if err != nil {
		return remoteFailure(err)
	}
	if col == nil {
		return models.Fail(models.KindUnexpected, "lookup returned no collection")
	}
	return models.Success(map[string]interface{}{"collection": normalizeCollection(*col)})
}

func (d *Dispatcher) getCollectionStats(ctx context.Context, raw map[string]interface{}) models.Envelope {
	args, err := parseCollectionIDArgs(raw)
	if err != nil {
		return models.Fail(models.KindValidation, err.Error())
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return models.Fail(models.KindUnexpected, err.Error())
	}
	stats, err := d.api.CollectionStats(ctx, args.CollectionID)
	if err != nil {
		return remoteFailure(err)
	}
	return models.Success(map[string]interface{}{"stats": stats})
}

func (d *Dispatcher) listCollectionFiles(ctx context.Context, raw map[string]interface{}) models.Envelope {
	args, err := parseCollectionIDArgs(raw)
	if err != nil {
		return models.Fail(models.KindValidation, err.Error())
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return models.Fail(models.KindUnexpected, err.Error())
	}
	files, err := d.api.ListFiles(ctx, args.CollectionID)
	if err != nil {
		return remoteFailure(err)
	}
	normalized := make([]map[string]interface{}, 0, len(files))
	for _, f := range files {
		normalized = append(normalized, map[string]interface{}{
			"id":     f.ID,
			"name":   f.Name,
			"status": f.Status,
		})
	}
	return models.Success(map[string]interface{}{"files": normalized})
}

func (d *Dispatcher) addFile(ctx context.Context, raw map[string]interface{}) models.Envelope {
	args, err := parseAddFileArgs(raw)
	if err != nil {
		return models.Fail(models.KindValidation, err.Error())
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return models.Fail(models.KindUnexpected, err.Error())
	}
	files, err := d.api.AddFiles(ctx, args.CollectionID, []spool.FileToAdd{{Name: args.Name, URL: args.URL}})
	if err != nil {
		return remoteFailure(err)
	}
	if len(files) == 0 {
		return models.Fail(models.KindUnexpected, "add file returned an empty file list")
	}
	return models.Success(map[string]interface{}{"file_id": files[0].ID})
}

func (d *Dispatcher) search(ctx context.Context, raw map[string]interface{}) models.Envelope {
	args, err := parseSearchArgs(raw)
	if err != nil {
		return models.Fail(models.KindValidation, err.Error())
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return models.Fail(models.KindUnexpected, err.Error())
	}
	matches, err := d.api.Search(ctx, args.CollectionID, args.Query)
	if err != nil {
		return remoteFailure(err)
	}
	normalized := make([]map[string]interface{}, 0, len(matches))
	for _, m := range matches {
		normalized = append(normalized, map[string]interface{}{
			"content": m.Content,
			"score":   m.Score,
		})
	}
	return models.Success(normalized)
}

// normalizeCollection flattens a collection to the wire shape shared by
// list and detail results. A zero creation time becomes an empty string
// rather than a zero-value timestamp.
func normalizeCollection(c spool.Collection) map[string]interface{} {
	created := ""
	if !c.CreatedAt.IsZero() {
		created = c.CreatedAt.Format(time.RFC3339)
	}
	return map[string]interface{}{
		"id":         c.ID,
		"name":       c.Name,
		"created_at": created,
	}
}

// remoteFailure classifies an error returned by the Spool client.
// Failures the API itself reported keep their message verbatim;
// anything else, transport faults included, is an internal defect
// signal.
func remoteFailure(err error) models.Envelope {
	var apiErr *spool.Error
	if errors.As(err, &apiErr) {
		return models.Fail(models.KindRemoteAPI, apiErr.Message)
	}
	return models.Fail(models.KindUnexpected, err.Error())
}
