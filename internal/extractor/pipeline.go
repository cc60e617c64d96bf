package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/osallek/osa-extractor/internal/assets"
	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/osallek/osa-extractor/internal/game"
	"github.com/osallek/osa-extractor/internal/history"
	"github.com/osallek/osa-extractor/internal/progress"
	"github.com/osallek/osa-extractor/internal/snapshot"
	"github.com/osallek/osa-extractor/internal/staging"
	"github.com/ubuntu/decorate"
)

// sections maps the save sections reported by the parser to the step they start.
var sections = map[string]progress.Step{
	game.SectionProvinces:      progress.ParsingSaveProvinces,
	game.SectionCountries:      progress.ParsingSaveCountries,
	game.SectionActiveAdvisors: progress.ParsingSaveWars,
}

// run is the whole extraction of one save. The staging directory is removed on every return
// path, panics included.
func (e *Extractor) run(ctx context.Context, t *progress.Tracker, savePath, previousID string) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			e.log.Error("Extraction panicked", "save", savePath, "panic", p)
			res, err = Result{}, fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()
	defer decorate.OnError(&err, "extraction of %s failed", savePath)

	log := e.log.With("save", savePath)
	log.Info("Starting extraction", "previous_id", previousID)

	s, err := e.parse(ctx, t, savePath)
	if err != nil {
		return Result{}, err
	}

	t.SetStep(progress.GeneratingData)
	done := e.metrics.time(progress.GeneratingData)
	stage, err := staging.New(e.fs, e.tempDir, staging.WithLogger(e.log))
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := stage.Remove(); err != nil {
			log.Warn("Could not remove staging directory", "path", stage.Root(), "error", err)
		}
	}()

	w := assets.NewWriter(stage,
		assets.WithSourceFs(e.src),
		assets.WithWorkers(e.workers),
		assets.WithMaxImageSize(e.maxImageSize),
		assets.WithLogger(e.log),
		assets.WithObserver(e.metrics.asset),
	)
	snap, err := e.generate(ctx, t, w, s, previousID)
	if err != nil {
		return Result{}, err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return Result{}, fmt.Errorf("could not serialize snapshot: %v", err)
	}
	if _, err := stage.WriteFile(constants.SnapshotFileName, data); err != nil {
		return Result{}, err
	}
	done()

	t.SetStep(progress.SendingData)
	done = e.metrics.time(progress.SendingData)
	sub, err := e.client.SubmitSnapshot(ctx, snap)
	if err != nil {
		return Result{}, err
	}
	log.Debug("Snapshot submitted", "id", sub.ID, "missing_categories", len(sub.MissingAssets))

	var paths []string
	if hasMissing(sub.MissingAssets) {
		if paths, err = w.Resolve(ctx, s, sub.MissingAssets); err != nil {
			return Result{}, err
		}
	}
	if len(paths) > 0 {
		if err := e.client.UploadAssets(ctx, stage.Root(), paths, sub.ID); err != nil {
			return Result{}, err
		}
	}
	done()

	t.Finish(sub.ResultLink)
	log.Info("Extraction finished", "id", sub.ID, "link", sub.ResultLink, "uploaded", len(paths))
	e.record(ctx, history.Record{
		SaveName:   saveName(savePath),
		SavePath:   savePath,
		SnapshotID: sub.ID,
		Link:       sub.ResultLink,
	})

	return Result{ID: sub.ID, Link: sub.ResultLink, Uploaded: len(paths)}, nil
}

// parse reads the game data then the save, driving the parsing steps.
func (e *Extractor) parse(ctx context.Context, t *progress.Tracker, savePath string) (*game.Save, error) {
	t.SetStep(progress.ParsingGame)
	done := e.metrics.time(progress.ParsingGame)
	g, err := e.parser.ParseGame(ctx, savePath, func(n, total int) {
		if total > 0 {
			t.Advance(progress.ParsingGame, float64(n)/float64(total))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("could not parse game data: %w", err)
	}
	done()

	t.SetStep(progress.ParsingSaveInfo)
	done = e.metrics.time(progress.ParsingSave)
	s, err := e.parser.LoadSave(ctx, savePath, g, func(name string) {
		if step, ok := sections[name]; ok {
			t.SetStep(step)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("could not parse save: %w", err)
	}
	if s == nil {
		return nil, errors.New("parser returned no save")
	}
	if s.Game == nil {
		s.Game = g
	}
	done()

	return s, nil
}

// generate writes the reference and eager assets, then builds the snapshot naming them.
func (e *Extractor) generate(ctx context.Context, t *progress.Tracker, w *assets.Writer, s *game.Save, previousID string) (*snapshot.Snapshot, error) {
	colors, err := w.WriteColors(s.Game)
	if err != nil {
		return nil, err
	}
	provinces, err := w.ProvincesHash(s.Game)
	if err != nil {
		return nil, err
	}
	if err := w.WriteEager(ctx, s); err != nil {
		return nil, err
	}

	p := snapshot.New(w, snapshot.WithWorkers(e.workers), snapshot.WithLogger(e.log))
	return p.Build(ctx, s, snapshot.References{
		ID:            previousID,
		ProvinceImage: provinces,
		ColorsImage:   colors.Hash,
	}, func(n, total int) {
		t.Advance(progress.GeneratingDataCountries, float64(n)/float64(total))
	})
}

// record adds a successful submission to the history. Failing to do so does not fail the run.
func (e *Extractor) record(ctx context.Context, r history.Record) {
	if e.history == nil {
		return
	}
	if _, err := e.history.Add(ctx, r); err != nil {
		e.log.Warn("Could not record submission in history", "id", r.SnapshotID, "error", err)
	}
}

// hasMissing reports whether the manifest names at least one asset.
func hasMissing(manifest map[string][]string) bool {
	for _, names := range manifest {
		if len(names) > 0 {
			return true
		}
	}
	return false
}

// saveName is the name of a save file without its directory nor extension.
func saveName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
