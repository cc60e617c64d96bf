package dump

import (
	"path/filepath"

	"github.com/osallek/osa-extractor/internal/game"
)

// sections maps save members to the section names reported to LoadSave callers.
var sections = map[string]string{
	"provinces": game.SectionProvinces,
	"countries": game.SectionCountries,
	"advisors":  game.SectionActiveAdvisors,
}

func gameFields(g *game.Game) map[string]any {
	return map[string]any{
		"provincesImage":      &g.ProvincesImage,
		"provinces":           &g.Provinces,
		"cultures":            &g.Cultures,
		"religions":           &g.Religions,
		"tradeGoods":          &g.TradeGoods,
		"estates":             &g.Estates,
		"privileges":          &g.Privileges,
		"buildings":           &g.Buildings,
		"advisors":            &g.Advisors,
		"institutions":        &g.Institutions,
		"ideaGroups":          &g.IdeaGroups,
		"rulerPersonalities":  &g.RulerPersonalities,
		"leaderPersonalities": &g.LeaderPersonalities,
	}
}

func saveFields(s *game.Save) map[string]any {
	return map[string]any{
		"name":            &s.Name,
		"date":            &s.Date,
		"startDate":       &s.StartDate,
		"countries":       &s.Countries,
		"provinces":       &s.Provinces,
		"advisors":        &s.Advisors,
		"teams":           &s.Teams,
		"diplomacy":       &s.Diplomacy,
		"institutions":    &s.Institutions,
		"wars":            &s.Wars,
		"hre":             &s.HRE,
		"celestialEmpire": &s.Celestial,
	}
}

func resolveGame(g *game.Game, dir string) {
	if g.ProvincesImage != "" && !filepath.IsAbs(g.ProvincesImage) {
		g.ProvincesImage = filepath.Join(dir, g.ProvincesImage)
	}
	for i := range g.Religions {
		resolve(dir, g.Religions[i].Icon)
	}
	for i := range g.TradeGoods {
		resolve(dir, g.TradeGoods[i].Image)
	}
	for i := range g.IdeaGroups {
		resolve(dir, g.IdeaGroups[i].Image)
		resolveAll(dir, g.IdeaGroups[i].Ideas)
	}
	for _, l := range [][]game.Entity{g.Estates, g.Privileges, g.Buildings, g.Advisors, g.Institutions,
		g.RulerPersonalities, g.LeaderPersonalities} {
		resolveAll(dir, l)
	}
}

func resolveAll(dir string, entities []game.Entity) {
	for i := range entities {
		resolve(dir, entities[i].Image)
	}
}

func resolve(dir string, r *game.ImageRef) {
	if r == nil || r.Path == "" || filepath.IsAbs(r.Path) {
		return
	}
	r.Path = filepath.Join(dir, r.Path)
}
