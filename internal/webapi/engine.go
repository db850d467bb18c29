package webapi

import (
	"github.com/energylabel/elex/internal/codec"
	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
	"github.com/energylabel/elex/internal/session"
)

//go:generate mockgen -source=engine.go -destination=engine_mock_test.go -package=webapi

// Engine is the rating session behind the API. *session.Session implements
// it; every method is safe for concurrent use.
type Engine interface {
	// Snapshot returns the latest published snapshot.
	Snapshot() *session.Snapshot

	SetMode(label string) (*session.Snapshot, error)
	SetReference(name string) (*session.Snapshot, error)
	SetTask(task models.Task) (*session.Snapshot, error)
	SetAxes(xKey, yKey string) (*session.Snapshot, error)
	SetWeight(id models.MetricID, weight float64) (*session.Snapshot, error)

	// Calibrate re-derives boundaries. Zero fractions select the session
	// default.
	Calibrate(fractions rating.Fractions) (*session.Snapshot, []error)

	ImportBoundaries(data []byte) (codec.Report, error)
	ImportWeights(data []byte) (codec.Report, error)
	ExportBoundaries(format codec.Format) ([]byte, error)
	ExportWeights(format codec.Format) ([]byte, error)
}

var _ Engine = (*session.Session)(nil)
