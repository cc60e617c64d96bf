package testutils

import (
	"context"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/osallek/osa-extractor/internal/game"
	"github.com/spf13/afero"
)

// Fixture dates.
var (
	StartDate     = game.Date{Year: 1444, Month: 11, Day: 11}
	FormationDate = game.Date{Year: 1480, Month: 5, Day: 5}
	SaveDate      = game.Date{Year: 1500, Month: 1, Day: 1}
)

// NewSave returns a small Scandinavian campaign whose source images are written under root on fsys.
//
// Sweden (SWE) formed Scandinavia (SCA) at FormationDate and Denmark inherited Copenhagen into it
// through a decision on the same day. SCA has a custom flag, other countries use game flags.
func NewSave(t *testing.T, fsys afero.Fs, root string) *game.Save {
	t.Helper()

	img := func(name string, c color.Color) *game.ImageRef {
		p := filepath.Join(root, "gfx", name)
		WriteImage(t, fsys, p, Solid(4, 4, c))
		return &game.ImageRef{Path: p}
	}
	pixels := func(c color.Color) *game.ImageRef {
		return &game.ImageRef{Pixels: Solid(4, 4, c)}
	}
	red := color.NRGBA{R: 0xFF, A: 0xFF}
	green := color.NRGBA{G: 0xFF, A: 0xFF}
	blue := color.NRGBA{B: 0xFF, A: 0xFF}
	gold := color.NRGBA{R: 0xFF, G: 0xD7, A: 0xFF}

	provincesImage := filepath.Join(root, "map", "provinces.bmp")
	WriteImage(t, fsys, provincesImage, Solid(8, 4, red))

	g := &game.Game{
		ProvincesImage: provincesImage,
		Provinces: []game.ProvinceDefinition{
			{ID: 1, Color: game.RGB(128, 34, 64)},
			{ID: 2, Color: game.RGB(0, 36, 128)},
			{ID: 3, Color: game.RGB(128, 38, 192)},
			{ID: 4, Color: game.RGB(10, 10, 200)},
			{ID: 5, Color: game.RGB(10, 200, 200)},
			{ID: 6, Color: game.RGB(90, 90, 90)},
		},
		Cultures: []game.Culture{
			{Name: "swedish", Group: "scandinavian", Localized: "Swedish"},
			{Name: "danish", Group: "scandinavian", Localized: "Danish"},
			{Name: "norwegian", Group: "scandinavian", Localized: "Norwegian"},
		},
		Religions: []game.Religion{
			{Name: "catholic", Group: "christian", Localized: "Catholic", Color: game.RGB(204, 204, 0), Icon: pixels(gold)},
			{Name: "protestant", Group: "christian", Localized: "Protestant", Color: game.RGB(0, 0, 204), Icon: img("protestant.png", blue)},
			{Name: "norse_pagan_reformed", Group: "pagan", Localized: "Norse"},
		},
		TradeGoods: []game.TradeGood{
			{Entity: game.Entity{Name: "grain", Localized: "Grain", Image: pixels(gold)}, Price: 2.5, Color: game.RGB(230, 200, 0)},
			{Entity: game.Entity{Name: "fish", Localized: "Fish", Image: pixels(blue)}, Price: 2.5, Color: game.RGB(0, 0, 230)},
			{Entity: game.Entity{Name: "copper", Localized: "Copper", Image: img("copper.png", red)}, Price: 3, Color: game.RGB(200, 100, 0)},
		},
		Estates: []game.Entity{
			{Name: "estate_nobles", Localized: "Nobility", Image: pixels(red)},
			{Name: "estate_church", Localized: "Clergy", Image: pixels(green)},
		},
		Privileges: []game.Entity{
			{Name: "estate_nobles_land_rights", Localized: "Land Rights", Image: img("land_rights.png", green)},
		},
		Buildings: []game.Entity{
			{Name: "temple", Localized: "Temple", Image: img("temple.png", gold)},
			{Name: "marketplace", Localized: "Marketplace", Image: img("marketplace.png", blue)},
		},
		Advisors: []game.Entity{
			{Name: "philosopher", Localized: "Philosopher", Image: img("philosopher.png", green)},
			{Name: "treasurer", Localized: "Treasurer", Image: img("treasurer.png", red)},
		},
		Institutions: []game.Entity{
			{Name: "feudalism", Localized: "Feudalism", Image: img("feudalism.png", red)},
			{Name: "renaissance", Localized: "Renaissance", Image: img("renaissance.png", blue)},
		},
		IdeaGroups: []game.IdeaGroup{{
			Entity:   game.Entity{Name: "trade_ideas", Localized: "Trade Ideas", Image: img("trade_ideas.png", gold)},
			Category: "DIP",
			Ideas: []game.Entity{
				{Name: "shrewd_commerce_practise", Localized: "Shrewd Commerce", Image: img("shrewd.png", green)},
			},
		}},
		RulerPersonalities: []game.Entity{
			{Name: "just_personality", Localized: "Just", Image: img("just.png", blue)},
		},
		LeaderPersonalities: []game.Entity{
			{Name: "inspirational_leader", Localized: "Inspirational", Image: img("inspirational.png", gold)},
		},
	}

	history := func(events ...game.CountryEvent) *game.CountryHistory {
		return &game.CountryHistory{Events: events}
	}

	return &game.Save{
		Name:      "Kalmar Union",
		Date:      SaveDate,
		StartDate: StartDate,
		Game:      g,
		Countries: []game.Country{
			{Tag: "SWE", Name: "Sweden", PrimaryCulture: "swedish", Religion: "catholic",
				History: history(game.CountryEvent{Date: StartDate}), Flag: img("SWE.png", blue)},
			{Tag: "DAN", Name: "Denmark", PrimaryCulture: "danish", Religion: "catholic",
				History: history(game.CountryEvent{Date: StartDate}), Flag: img("DAN.png", red)},
			{Tag: "NOR", Name: "Norway", PrimaryCulture: "norwegian", Religion: "catholic",
				History: history(game.CountryEvent{Date: StartDate}), Flag: img("NOR.png", red)},
			{
				Tag:              "SCA",
				Name:             "Scandinavia",
				PrimaryCulture:   "swedish",
				AcceptedCultures: []string{"danish"},
				Religion:         "protestant",
				Players:          []string{"Player"},
				GreatPowerRank:   3,
				History:          history(game.CountryEvent{Date: FormationDate, ChangedTagFrom: "SWE"}),
				Flag:             img("SCA.png", gold),
				CustomFlag:       pixels(green),
			},
			{Tag: game.RebelsTag, Name: "Rebels",
				History: history(game.CountryEvent{Date: FormationDate}), CustomFlag: pixels(red)},
			{Tag: "---", Name: "Observer", Observer: true,
				History: history(game.CountryEvent{Date: FormationDate}), CustomFlag: pixels(red)},
		},
		Provinces: []game.Province{
			{ID: 1, Name: "Stockholm", Kind: game.Land, Owner: "SCA", Controller: "SCA", Culture: "swedish", Religion: "protestant",
				TradeGood: "grain", BaseTax: 5, BaseProd: 5, BaseMP: 3, Cores: []string{"SCA"},
				History:   []game.ProvinceEvent{{Date: StartDate, Owner: "SWE"}}},
			{ID: 2, Name: "Sjaelland", Kind: game.Land, Owner: "SCA", Controller: "SCA", Culture: "danish", Religion: "catholic",
				TradeGood: "fish", BaseTax: 6, BaseProd: 6, BaseMP: 3,
				History:   []game.ProvinceEvent{{Date: StartDate, Owner: "DAN"}, {Date: FormationDate, FakeOwner: "SCA"}}},
			{ID: 3, Name: "Akershus", Kind: game.Land, Owner: "NOR", Controller: "NOR", Culture: "norwegian", Religion: "catholic",
				TradeGood: "copper", BaseTax: 3, BaseProd: 3, BaseMP: 2,
				History:   []game.ProvinceEvent{{Date: StartDate, Owner: "NOR"}}},
			{ID: 4, Name: "Baltic Sea", Kind: game.Ocean},
			{ID: 5, Name: "Vanern", Kind: game.Lake},
			{ID: 6, Name: "Lappland", Kind: game.Impassable},
		},
		Advisors: []game.Advisor{
			{ID: 10, Name: "Olaus Petri", Type: "philosopher", Skill: 2, Country: "SCA", Location: 1, Hired: FormationDate},
		},
		Teams: []game.Team{{Name: "North", Members: []string{"SCA"}}},
		Diplomacy: game.Diplomacy{
			Alliances:      []game.Relation{{First: "SCA", Second: "NOR", Start: FormationDate}},
			RoyalMarriages: []game.Relation{{First: "NOR", Second: "SCA", Start: FormationDate}},
			Subsidies:      []game.Relation{{First: "SCA", Second: "NOR", Amount: 1.5}},
		},
		Institutions: []game.InstitutionState{
			{Name: "feudalism", Available: true},
			{Name: "renaissance", Available: true, Origin: 2},
		},
		Wars: []game.War{{Name: "Norwegian Rebellion", Start: SaveDate, Attackers: []string{"NOR"}, Defenders: []string{"SCA"}}},
		HRE:  &game.HRE{Emperor: "HAB", Electors: []string{"BOH"}},
	}
}

// Parser is a game.Parser handing out an already built save.
type Parser struct {
	Save *game.Save
	// Units is the number of game units reported by ParseGame.
	Units int
	// Err, when set, is returned by ParseGame.
	Err error
}

// ParseGame implements game.Parser.
func (p Parser) ParseGame(ctx context.Context, _ string, unit func(done, total int)) (*game.Game, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	for i := range p.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if unit != nil {
			unit(i+1, p.Units)
		}
	}
	return p.Save.Game, nil
}

// LoadSave implements game.Parser.
func (p Parser) LoadSave(ctx context.Context, _ string, _ *game.Game, section func(name string)) (*game.Save, error) {
	for _, s := range []string{game.SectionProvinces, game.SectionCountries, game.SectionActiveAdvisors} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if section != nil {
			section(s)
		}
	}
	return p.Save, nil
}
