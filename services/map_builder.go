package services

import (
	"context"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/snap-point/fieldtrack/models"
	"golang.org/x/sync/errgroup"
)

var statusColors = map[models.UploadStatus]string{
	models.StatusPending:  "#f59e0b",
	models.StatusApproved: "#22c55e",
	models.StatusRejected: "#ef4444",
}

// MapBuilder turns a session's uploads into a GeoJSON layer: one marker per
// upload and one line per consecutive pair.
type MapBuilder struct {
	Router      Router // nil draws straight lines only
	Concurrency int
}

func (b *MapBuilder) Build(ctx context.Context, uploads []models.Upload) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i := range uploads {
		u := &uploads[i]
		f := geojson.NewFeature(orb.Point{u.Longitude, u.Latitude})
		f.Properties = geojson.Properties{
			"kind":      "marker",
			"uploadId":  u.ID,
			"sequence":  u.Sequence,
			"status":    u.Status,
			"color":     statusColors[u.Status],
			"remark":    u.Remark,
			"fileCount": len(u.Files),
			"createdAt": u.CreatedAt,
		}
		fc.Append(f)
	}

	if len(uploads) < 2 {
		return fc
	}

	segments := make([]*geojson.Feature, len(uploads)-1)
	g, gctx := errgroup.WithContext(ctx)
	limit := b.Concurrency
	if limit <= 0 {
		limit = 4
	}
	g.SetLimit(limit)

	for i := 1; i < len(uploads); i++ {
		i := i
		g.Go(func() error {
			segments[i-1] = b.segment(gctx, &uploads[i-1], &uploads[i])
			return nil
		})
	}
	g.Wait()

	for _, s := range segments {
		fc.Append(s)
	}
	return fc
}

// segment is styled by the destination upload: solid once approved, dashed otherwise.
func (b *MapBuilder) segment(ctx context.Context, from, to *models.Upload) *geojson.Feature {
	line := orb.LineString{
		{from.Longitude, from.Latitude},
		{to.Longitude, to.Latitude},
	}
	routed := false

	if b.Router != nil {
		path, err := b.Router.Route(ctx, from.Point(), to.Point())
		if err != nil {
			log.Printf("route %d -> %d unavailable, drawing straight line: %v", from.ID, to.ID, err)
		} else {
			line = path
			routed = true
		}
	}

	style := "dashed"
	if to.Status == models.StatusApproved {
		style = "solid"
	}

	f := geojson.NewFeature(line)
	f.Properties = geojson.Properties{
		"kind":         "route",
		"fromUploadId": from.ID,
		"toUploadId":   to.ID,
		"status":       to.Status,
		"color":        statusColors[to.Status],
		"style":        style,
		"routed":       routed,
	}
	return f
}
