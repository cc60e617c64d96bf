package snapshot

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode/utf16"

	"github.com/osallek/osa-extractor/internal/assets"
	"github.com/osallek/osa-extractor/internal/game"
)

func (p *Projector) country(s *game.Save, c *game.Country, rel relations) Country {
	flag := c.Flag
	if assets.HasCustomFlag(s, c) {
		flag = c.CustomFlag
	}

	dto := Country{
		Tag:              c.Tag,
		Name:             c.Name,
		CustomName:       c.CustomName,
		Players:          slices.Clone(c.Players),
		GreatPowerRank:   c.GreatPowerRank,
		Image:            p.hashes.Hash(assets.Flags, c.Tag, flag),
		Color:            c.MapColor,
		Flags:            c.Flags,
		Variables:        c.Variables,
		AdmTech:          c.AdmTech,
		DipTech:          c.DipTech,
		MilTech:          c.MilTech,
		Religion:         c.Religion,
		PrimaryCulture:   c.PrimaryCulture,
		AcceptedCultures: slices.Clone(c.AcceptedCultures),
		Prestige:         c.Prestige,
		Stability:        c.Stability,
		Treasury:         c.Treasury,
		Inflation:        c.Inflation,
		Corruption:       c.Corruption,
		Manpower:         int(math.Round(c.Manpower)),
		MaxManpower:      int(math.Round(c.MaxManpower)),
		Sailors:          int(math.Round(c.Sailors)),
		MaxSailors:       int(math.Round(c.MaxSailors)),
		IdeaGroups:       c.IdeaGroups,
		Advisors:         slices.Clone(c.ActiveAdvisors),
		Rivals:           slices.Clone(c.Rivals),
	}
	for _, e := range c.Estates {
		dto.Estates = append(dto.Estates, CountryEstate{
			Name:       e.Name,
			Loyalty:    e.Loyalty,
			Influence:  e.Influence,
			Territory:  e.Territory,
			Privileges: slices.Clone(e.Privileges),
		})
	}
	if c.History != nil {
		for _, h := range c.History.Events {
			dto.History = append(dto.History, HistoryEvent{Date: h.Date, ChangedTagFrom: h.ChangedTagFrom})
		}
		slices.SortStableFunc(dto.History, func(a, b HistoryEvent) int { return a.Date.Compare(b.Date) })
	}
	rel.fill(&dto)

	return dto
}

// province projects a land province, seeding its ownership timeline from its own history.
func province(pr *game.Province, tags map[string]bool) Province {
	dto := Province{
		ID:             pr.ID,
		Name:           pr.Name,
		Owner:          pr.Owner,
		Controller:     pr.Controller,
		Religion:       pr.Religion,
		Culture:        pr.Culture,
		TradeGood:      pr.TradeGood,
		BaseTax:        pr.BaseTax,
		BaseProduction: pr.BaseProd,
		BaseManpower:   pr.BaseMP,
		Buildings:      slices.Clone(pr.Buildings),
		Cores:          slices.Clone(pr.Cores),
		history:        slices.Clone(pr.History),
	}
	slices.SortStableFunc(dto.history, func(a, b game.ProvinceEvent) int { return a.Date.Compare(b.Date) })
	for _, h := range dto.history {
		if h.Owner != "" {
			dto.addOwner(h.Date, h.Owner, tags)
		}
	}
	return dto
}

func (p *Projector) named(cat assets.Category, entities []game.Entity) []NamedImage {
	r := make([]NamedImage, 0, len(entities))
	for _, e := range entities {
		r = append(r, p.namedImage(cat, e))
	}
	return r
}

func (p *Projector) namedImage(cat assets.Category, e game.Entity) NamedImage {
	return NamedImage{
		Name:      e.Name,
		Localized: e.Localized,
		Image:     p.hashes.Hash(cat, e.Name, e.Image),
	}
}

func (p *Projector) tradeGoods(goods []game.TradeGood) []TradeGood {
	r := make([]TradeGood, 0, len(goods))
	for _, g := range goods {
		r = append(r, TradeGood{
			NamedImage: p.namedImage(assets.Goods, g.Entity),
			Price:      g.Price,
			Color:      g.Color,
		})
	}
	return r
}

func (p *Projector) ideaGroups(groups []game.IdeaGroup) []IdeaGroup {
	r := make([]IdeaGroup, 0, len(groups))
	for _, g := range groups {
		r = append(r, IdeaGroup{
			NamedImage: p.namedImage(assets.IdeaGroups, g.Entity),
			Category:   g.Category,
			Ideas:      p.named(assets.Ideas, g.Ideas),
		})
	}
	return r
}

// religions keeps the religions having an icon.
func (p *Projector) religions(religions []game.Religion) []Religion {
	var r []Religion
	for _, rel := range religions {
		if rel.Icon.Empty() {
			continue
		}
		r = append(r, Religion{
			NamedImage: NamedImage{
				Name:      rel.Name,
				Localized: rel.Localized,
				Image:     p.hashes.Hash(assets.Religions, rel.Name, rel.Icon),
			},
			Group: rel.Group,
			Color: rel.Color,
		})
	}
	return r
}

// institutions keeps the institutions which appeared in the save.
func (p *Projector) institutions(defs []game.Entity, states []game.InstitutionState) []Institution {
	byName := make(map[string]game.InstitutionState, len(states))
	for _, s := range states {
		byName[s.Name] = s
	}

	var r []Institution
	for _, d := range defs {
		s, ok := byName[d.Name]
		if !ok || !s.Available {
			continue
		}
		r = append(r, Institution{NamedImage: p.namedImage(assets.Institutions, d), Origin: s.Origin})
	}
	return r
}

func cultures(cultures []game.Culture) []Culture {
	r := make([]Culture, 0, len(cultures))
	for _, c := range cultures {
		r = append(r, Culture{
			Name:      c.Name,
			Group:     c.Group,
			Localized: c.Localized,
			Color:     CultureColor(c.Name),
		})
	}
	return r
}

// CultureColor derives a stable color from a culture name.
// It matches the colors already known by the server, computed from the 32 bits hash of the
// upper-cased UTF-16 name, modulo 0xFFFFFF.
func CultureColor(name string) game.Color {
	var h int32
	for _, u := range utf16.Encode([]rune(strings.ToUpper(name))) {
		h = 31*h + int32(u)
	}
	return game.Color(uint32(h%0xFFFFFF) & 0xFFFFFF)
}

func teams(teams []game.Team) []Team {
	if len(teams) == 0 {
		return nil
	}
	r := make([]Team, 0, len(teams))
	for _, t := range teams {
		r = append(r, Team{Name: t.Name, Members: slices.Clone(t.Members)})
	}
	return r
}

func advisors(advisors []game.Advisor) []Advisor {
	r := make([]Advisor, 0, len(advisors))
	for _, a := range advisors {
		r = append(r, Advisor(a))
	}
	slices.SortFunc(r, func(a, b Advisor) int { return cmp.Compare(a.ID, b.ID) })
	return r
}

func hre(h *game.HRE) *HRE {
	if h == nil {
		return nil
	}
	return &HRE{
		Emperor:    h.Emperor,
		Electors:   slices.Clone(h.Electors),
		Reforms:    slices.Clone(h.Reforms),
		Influence:  h.Influence,
		Dismantled: h.Dismantled,
	}
}

func celestial(c *game.CelestialEmpire) *CelestialEmpire {
	if c == nil {
		return nil
	}
	return &CelestialEmpire{
		Emperor:    c.Emperor,
		Reforms:    slices.Clone(c.Reforms),
		Mandate:    c.Mandate,
		Dismantled: c.Dismantled,
	}
}

func wars(wars []game.War) []War {
	if len(wars) == 0 {
		return nil
	}
	r := make([]War, 0, len(wars))
	for _, w := range wars {
		r = append(r, War{
			Name:      w.Name,
			StartDate: w.Start,
			Attackers: slices.Clone(w.Attackers),
			Defenders: slices.Clone(w.Defenders),
		})
	}
	return r
}
