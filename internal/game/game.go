// Package game holds the read-only model handed over by the save parser.
//
// Only the parts of the game data and of the save that the extraction pipeline projects are
// modelled here. The parser itself lives behind the Parser interface.
package game

import "context"

// Section names reported by Parser.LoadSave while it walks the top level of a save.
const (
	SectionProvinces      = "provinces"
	SectionCountries      = "countries"
	SectionActiveAdvisors = "active_advisors"
)

// Parser reads the game data and a save built on top of it.
type Parser interface {
	// ParseGame loads the game data matching the save. unit is called after each parsed unit.
	ParseGame(ctx context.Context, savePath string, unit func(done, total int)) (*Game, error)
	// LoadSave loads the save itself. section is called when a new top level section starts.
	LoadSave(ctx context.Context, savePath string, g *Game, section func(name string)) (*Save, error)
}

// Entity is any named game object with a localized name and an optional picture.
type Entity struct {
	Name      string    `json:"name"`
	Localized string    `json:"localized,omitempty"`
	Image     *ImageRef `json:"image,omitempty"`
}

// ProvinceDefinition is a province of the game map, identified by its color on the provinces image.
type ProvinceDefinition struct {
	ID    int   `json:"id"`
	Color Color `json:"color"`
}

// Culture of the game data.
type Culture struct {
	Name      string `json:"name"`
	Group     string `json:"group"`
	Localized string `json:"localized,omitempty"`
}

// Religion of the game data. Icon is only set for religions with a picture.
type Religion struct {
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	Localized string    `json:"localized,omitempty"`
	Color     Color     `json:"color"`
	Icon      *ImageRef `json:"icon,omitempty"`
}

// TradeGood of the game data.
type TradeGood struct {
	Entity
	Price float64 `json:"price"`
	Color Color   `json:"color"`
}

// IdeaGroup of the game data with its ideas.
type IdeaGroup struct {
	Entity
	Category string   `json:"category,omitempty"`
	Ideas    []Entity `json:"ideas,omitempty"`
}

// Game is the static game data a save is built on.
type Game struct {
	// ProvincesImage is the path of the provinces reference map.
	ProvincesImage string               `json:"provincesImage"`
	Provinces      []ProvinceDefinition `json:"provinces"`

	Cultures            []Culture   `json:"cultures"`
	Religions           []Religion  `json:"religions"`
	TradeGoods          []TradeGood `json:"tradeGoods"`
	Estates             []Entity    `json:"estates"`
	Privileges          []Entity    `json:"privileges"`
	Buildings           []Entity    `json:"buildings"`
	Advisors            []Entity    `json:"advisors"`
	Institutions        []Entity    `json:"institutions"`
	IdeaGroups          []IdeaGroup `json:"ideaGroups"`
	RulerPersonalities  []Entity    `json:"rulerPersonalities"`
	LeaderPersonalities []Entity    `json:"leaderPersonalities"`
}

// MaxProvinceID returns the greatest province id of the game map, or 0 when there is none.
func (g *Game) MaxProvinceID() int {
	if g == nil {
		return 0
	}
	var m int
	for _, p := range g.Provinces {
		m = max(m, p.ID)
	}
	return m
}
