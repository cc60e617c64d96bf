// Package snapshot projects a parsed save into the flat Snapshot sent to the synchronization server.
package snapshot

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/osallek/osa-extractor/internal/assets"
	"github.com/osallek/osa-extractor/internal/constants"
	"github.com/osallek/osa-extractor/internal/game"
	"github.com/ubuntu/decorate"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidSave is returned when the save lacks what every snapshot needs.
var ErrInvalidSave = errors.New("invalid save")

// ImageHasher names the images referenced by the snapshot.
type ImageHasher interface {
	Hash(cat assets.Category, name string, ref *game.ImageRef) string
}

// References are the values of the snapshot decided outside the save.
type References struct {
	// ID is the id of a previous submission to update. A new one is generated when empty.
	ID            string
	ProvinceImage string
	ColorsImage   string
}

// Projector builds snapshots.
type Projector struct {
	hashes  ImageHasher
	workers int
	log     *slog.Logger
}

type options struct {
	workers int
	log     *slog.Logger
}

// Options represents an optional function to override Projector default values.
type Options func(*options)

// WithWorkers bounds the number of entities projected concurrently.
func WithWorkers(n int) Options {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger of the projector.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// New returns a Projector naming images through hashes.
func New(hashes ImageHasher, args ...Options) *Projector {
	opts := options{
		workers: constants.DefaultWorkers,
		log:     slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	return &Projector{
		hashes:  hashes,
		workers: opts.workers,
		log:     opts.log,
	}
}

// Build projects s into a new Snapshot.
//
// progress is called once per projected country while ownership is reconstructed.
func (p *Projector) Build(ctx context.Context, s *game.Save, refs References, progress func(done, total int)) (snap *Snapshot, err error) {
	defer decorate.OnError(&err, "could not build snapshot")

	if s == nil || s.Game == nil {
		return nil, fmt.Errorf("%w: no save", ErrInvalidSave)
	}
	switch {
	case s.Name == "":
		return nil, fmt.Errorf("%w: missing name", ErrInvalidSave)
	case s.Date.IsZero():
		return nil, fmt.Errorf("%w: missing date", ErrInvalidSave)
	case s.Game.MaxProvinceID() == 0:
		return nil, fmt.Errorf("%w: no provinces", ErrInvalidSave)
	}
	if progress == nil {
		progress = func(int, int) {}
	}

	id := refs.ID
	if id == "" {
		id = uuid.NewString()
	}
	g := s.Game
	snap = &Snapshot{
		ID:                  id,
		Name:                s.Name,
		Date:                s.Date,
		ProvinceImage:       refs.ProvinceImage,
		ColorsImage:         refs.ColorsImage,
		NbProvinces:         g.MaxProvinceID(),
		Teams:               teams(s.Teams),
		Advisors:            advisors(s.Advisors),
		Cultures:            cultures(g.Cultures),
		Religions:           p.religions(g.Religions),
		HRE:                 hre(s.HRE),
		CelestialEmpire:     celestial(s.Celestial),
		Institutions:        p.institutions(g.Institutions, s.Institutions),
		Diplomacy:           diplomacy(s.Diplomacy),
		Wars:                wars(s.Wars),
		Buildings:           p.named(assets.Buildings, g.Buildings),
		AdvisorTypes:        p.named(assets.Advisors, g.Advisors),
		TradeGoods:          p.tradeGoods(g.TradeGoods),
		Estates:             p.named(assets.Estates, g.Estates),
		Privileges:          p.named(assets.Privileges, g.Privileges),
		IdeaGroups:          p.ideaGroups(g.IdeaGroups),
		Personalities:       p.named(assets.Personalities, g.RulerPersonalities),
		LeaderPersonalities: p.named(assets.LeaderPersonalities, g.LeaderPersonalities),
	}

	land := make([]game.Province, 0, len(s.Provinces))
	for _, pr := range s.Provinces {
		switch pr.Kind {
		case game.Ocean:
			snap.OceansProvinces = append(snap.OceansProvinces, SimpleProvince{ID: pr.ID, Name: pr.Name})
		case game.Lake:
			snap.LakesProvinces = append(snap.LakesProvinces, SimpleProvince{ID: pr.ID, Name: pr.Name})
		case game.Impassable:
			snap.ImpassableProvinces = append(snap.ImpassableProvinces, SimpleProvince{ID: pr.ID, Name: pr.Name})
		default:
			land = append(land, pr)
		}
	}
	for _, l := range [][]SimpleProvince{snap.OceansProvinces, snap.LakesProvinces, snap.ImpassableProvinces} {
		slices.SortFunc(l, func(a, b SimpleProvince) int { return cmp.Compare(a.ID, b.ID) })
	}

	countries := p.selectCountries(s.Countries)
	rel := newRelations(s)
	if snap.Countries, err = project(ctx, p.workers, countries, func(c *game.Country) Country {
		return p.country(s, c, rel)
	}); err != nil {
		return nil, err
	}

	tags := make(map[string]bool, len(snap.Countries))
	for _, c := range snap.Countries {
		tags[c.Tag] = true
	}
	if snap.Provinces, err = project(ctx, p.workers, land, func(pr *game.Province) Province {
		return province(pr, tags)
	}); err != nil {
		return nil, err
	}
	slices.SortFunc(snap.Provinces, func(a, b Province) int { return cmp.Compare(a.ID, b.ID) })

	if err := reconstructOwners(ctx, snap.Countries, snap.Provinces, tags, progress); err != nil {
		return nil, err
	}

	return snap, nil
}

// selectCountries returns the countries to project, skipping observers and malformed entries.
func (p *Projector) selectCountries(all []game.Country) []game.Country {
	seen := make(map[string]bool, len(all))
	r := make([]game.Country, 0, len(all))
	for _, c := range all {
		if c.Observer {
			continue
		}
		if len(c.Tag) != 3 {
			p.log.Warn("Skipping country with malformed tag", "tag", c.Tag, "name", c.Name)
			continue
		}
		if seen[c.Tag] {
			p.log.Warn("Skipping duplicated country", "tag", c.Tag)
			continue
		}
		seen[c.Tag] = true
		r = append(r, c)
	}
	return r
}

// project maps src concurrently through fn, keeping the order of src.
func project[S, D any](ctx context.Context, workers int, src []S, fn func(*S) D) ([]D, error) {
	dst := make([]D, len(src))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range src {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dst[i] = fn(&src[i])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return dst, nil
}
