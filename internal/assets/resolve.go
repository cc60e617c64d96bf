package assets

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/osallek/osa-extractor/internal/game"
	"github.com/osallek/osa-extractor/internal/staging"
	"github.com/ubuntu/decorate"
	"golang.org/x/sync/errgroup"
)

// Resolve returns the paths of the staged files answering a missing assets manifest.
// Assets rendered earlier are reused as is, the others are converted on demand.
//
// Entries which cannot be produced are logged and skipped, except the map reference images
// which fail the whole resolution.
func (w *Writer) Resolve(ctx context.Context, s *game.Save, manifest map[string][]string) (paths []string, err error) {
	defer decorate.OnError(&err, "could not resolve missing assets")

	g := s.Game
	if g == nil {
		g = &game.Game{}
	}
	sources := sourcesOf(s, g)
	custom := customFlags(s)

	var (
		mu    sync.Mutex
		found = make(map[string]struct{})
	)
	add := func(a staging.Asset) {
		mu.Lock()
		defer mu.Unlock()
		found[a.Path] = struct{}{}
	}

	keys := make([]string, 0, len(manifest))
	for k := range manifest {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	requested := make(map[Category][]string)
	for _, key := range keys {
		if len(manifest[key]) == 0 {
			continue
		}
		cat, ok := ParseCategory(key)
		if !ok {
			w.log.Warn("Server requested an unknown asset category, ignoring it", "category", key)
			continue
		}
		requested[cat] = append(requested[cat], manifest[key]...)
	}

	if _, ok := requested[Provinces]; ok {
		a, err := w.Convert(Provinces, string(Provinces), &game.ImageRef{Path: g.ProvincesImage})
		if err != nil {
			return nil, errors.Join(ErrReferenceImage, err)
		}
		add(a)
	}
	if _, ok := requested[Colors]; ok {
		a, ok := w.stage.Lookup(string(Colors), string(Colors))
		if !ok {
			return nil, fmt.Errorf("%w: colors image was not staged", ErrReferenceImage)
		}
		add(a)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, cat := range Categories {
		if cat.Reference() {
			continue
		}
		for _, name := range slices.Compact(slices.Sorted(slices.Values(requested[cat]))) {
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				renderedOnly := cat.Eager() || (cat == Flags && custom[name])
				if a, ok := w.resolveOne(cat, name, sources[cat][name], renderedOnly); ok {
					add(a)
				}
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	paths = make([]string, 0, len(found))
	for p := range found {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// resolveOne returns the asset of one manifest entry. It never fails: a missing asset is logged.
// When renderedOnly is set, only an asset rendered during generation can answer the entry, as the
// snapshot references its hash.
func (w *Writer) resolveOne(cat Category, name string, ref *game.ImageRef, renderedOnly bool) (staging.Asset, bool) {
	if a, ok := w.stage.Lookup(string(cat), name); ok {
		w.observe(string(cat), ResultReused)
		return a, true
	}

	if renderedOnly {
		w.log.Warn("Requested asset was not rendered, skipping it", "category", cat, "name", name)
		return staging.Asset{}, false
	}
	if ref.Empty() {
		w.log.Warn("Requested asset has no image, skipping it", "category", cat, "name", name)
		return staging.Asset{}, false
	}

	a, err := w.Convert(cat, name, ref)
	if err != nil {
		w.log.Warn("Could not convert requested asset, skipping it", "category", cat, "name", name, "error", err)
		w.observe(string(cat), ResultFailed)
		return staging.Asset{}, false
	}
	return a, true
}

// sourcesOf indexes the source image of every entity converted on demand, by category then name.
func sourcesOf(s *game.Save, g *game.Game) map[Category]map[string]*game.ImageRef {
	src := make(map[Category]map[string]*game.ImageRef)
	index := func(cat Category, entities []game.Entity) {
		m := src[cat]
		if m == nil {
			m = make(map[string]*game.ImageRef)
			src[cat] = m
		}
		for _, e := range entities {
			m[e.Name] = e.Image
		}
	}

	index(Buildings, g.Buildings)
	index(Advisors, g.Advisors)
	index(Institutions, g.Institutions)
	index(Privileges, g.Privileges)
	index(Personalities, g.RulerPersonalities)
	index(LeaderPersonalities, g.LeaderPersonalities)
	for _, ig := range g.IdeaGroups {
		index(IdeaGroups, []game.Entity{ig.Entity})
		index(Ideas, ig.Ideas)
	}

	flags := make(map[string]*game.ImageRef, len(s.Countries))
	for i := range s.Countries {
		c := &s.Countries[i]
		if HasCustomFlag(s, c) {
			continue
		}
		flags[c.Tag] = c.Flag
	}
	src[Flags] = flags

	return src
}

// customFlags returns the tags whose flag is the custom one rendered during generation.
func customFlags(s *game.Save) map[string]bool {
	tags := make(map[string]bool)
	for i := range s.Countries {
		if c := &s.Countries[i]; HasCustomFlag(s, c) {
			tags[c.Tag] = true
		}
	}
	return tags
}
